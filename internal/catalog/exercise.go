package catalog

// Exercise is a catalog entry: either part of the bundled seed dataset
// or added by the user (custom). Never updated or deleted.
type Exercise struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Image            string `json:"image,omitempty"`
	BodyPart         string `json:"bodyPart,omitempty"`
	PrimaryMuscles   string `json:"primaryMuscles,omitempty"`
	SecondaryMuscles string `json:"secondaryMuscles,omitempty"`
	Equipment        string `json:"equipment,omitempty"`
	Custom           bool   `json:"custom"`
}

// SearchParams filters the catalog. An empty query matches every name,
// an empty or "*" group disables the body part filter.
type SearchParams struct {
	Query string
	Group string
}
