package config

// FileStoreConfig contains configuration for uploaded file blob storage.
type FileStoreConfig struct {
	// Dir is the directory the local blob store writes under. Created on
	// startup when missing.
	Dir string `env:"DIR" envDefault:"./data/files"`
}
