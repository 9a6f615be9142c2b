package registry

import "time"

// Pointer is the persisted registry document naming the currently active
// model and its companion artifacts. It is only ever replaced wholesale,
// never mutated in place.
type Pointer struct {
	Active    ActiveModel    `json:"active"`
	Artifacts ArtifactPaths  `json:"artifacts"`
	Hashes    ArtifactHashes `json:"hashes"`
	Meta      map[string]any `json:"meta,omitempty"`
	UpdatedAt time.Time      `json:"updated_at_utc"`
}

// ActiveModel identifies the promoted model artifact.
type ActiveModel struct {
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// ArtifactPaths locates the companion artifacts the model was trained with.
type ArtifactPaths struct {
	EncoderPath  string `json:"encoder_path"`
	ScalerPath   string `json:"scaler_path"`
	FeaturesPath string `json:"features_json"`
}

// ArtifactHashes carries content digests for integrity checks. A nil hash
// means the file was absent at promote time, which is recorded rather than
// treated as an error.
type ArtifactHashes struct {
	ModelSHA256    *string `json:"model_sha256"`
	EncoderSHA256  *string `json:"encoder_sha256"`
	ScalerSHA256   *string `json:"scaler_sha256"`
	FeaturesSHA256 *string `json:"features_sha256"`
}

// PromoteRequest carries everything needed to promote a new active model.
type PromoteRequest struct {
	ModelPath string
	Name      string
	Version   int
	Meta      map[string]any
}
