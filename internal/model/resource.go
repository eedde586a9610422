package model

// ResourceKind distinguishes stylesheets from scripts.
type ResourceKind string

const (
	// KindCSS is a <link rel="stylesheet"> reference.
	KindCSS ResourceKind = "CSS"
	// KindJS is a <script src> reference.
	KindJS ResourceKind = "JS"
)

// ResourceStatus is the outcome of fetching a resource.
type ResourceStatus string

const (
	// StatusOK means the content was retrieved and is non-empty.
	StatusOK ResourceStatus = "OK"
	// StatusFailed means the fetch failed; Content and labels are empty.
	StatusFailed ResourceStatus = "FAILED"
)

// ResourceRecord is one discovered external stylesheet or script.
// One record exists per reference in the document; records are never
// merged, so a file referenced twice yields two records.
type ResourceRecord struct {
	URL         string         `json:"url"`
	Content     string         `json:"contenido,omitempty"`
	DisplayName string         `json:"nombre_descarga,omitempty"`
	ShortLabel  string         `json:"nombre_corto,omitempty"`
	Status      ResourceStatus `json:"estado"`
	Kind        ResourceKind   `json:"tipo"`
}

// Failed reports whether the record represents a failed fetch.
func (r ResourceRecord) Failed() bool {
	return r.Status == StatusFailed
}

// FailedResource is the report entry for a reference that could not be fetched.
type FailedResource struct {
	URL  string       `json:"url"`
	Kind ResourceKind `json:"tipo"`
}
