package config

type StorageConfig struct {
	// UploadDir receives uploads as <content-id><ext> when no bucket is set
	UploadDir string `env:"UPLOAD_DIR" yaml:"uploadDir"`

	// GCSBucket switches uploads to Google Cloud Storage
	GCSBucket string `env:"GCS_BUCKET" yaml:"gcsBucket"`
}

func NewStorageConfig() *StorageConfig {
	return &StorageConfig{
		UploadDir: "data/uploads",
	}
}
