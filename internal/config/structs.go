package config

// Config represents the complete configuration for the qalam OCR application.
// It covers all commands (image, pdf, score, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Tesseract recognition settings
	Tesseract TesseractConfig `mapstructure:"tesseract" yaml:"tesseract" json:"tesseract"`

	// Image preprocessing settings
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`

	// PDF processing settings
	PDF PDFConfig `mapstructure:"pdf" yaml:"pdf" json:"pdf"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Accuracy reporting configuration
	Accuracy AccuracyConfig `mapstructure:"accuracy" yaml:"accuracy" json:"accuracy"`
}

// TesseractConfig contains settings for the Tesseract recognition engine.
type TesseractConfig struct {
	// Languages lists trained-data packs to load, in priority order.
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	// TessdataDir overrides the tessdata directory; empty uses the
	// system default discovered by Tesseract itself.
	TessdataDir string `mapstructure:"tessdata_dir" yaml:"tessdata_dir" json:"tessdata_dir"`
	// PSM is the page segmentation mode passed through to Tesseract;
	// 0 keeps the engine default.
	PSM int `mapstructure:"psm" yaml:"psm" json:"psm"`
	// DPI is the assumed input resolution hint; 0 means unknown.
	DPI int `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
}

// PreprocessConfig contains image preparation settings applied before
// recognition.
type PreprocessConfig struct {
	Grayscale bool `mapstructure:"grayscale" yaml:"grayscale" json:"grayscale"`
	Binarize  bool `mapstructure:"binarize" yaml:"binarize" json:"binarize"`
}

// PDFConfig contains PDF processing settings.
type PDFConfig struct {
	// DPI is the resolution hint forwarded to recognition for page images.
	DPI int `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	// Workers bounds concurrent page processing; 0 means NumCPU.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// AccuracyConfig contains accuracy reporting settings.
type AccuracyConfig struct {
	// WordPreview is how many missing/extra words presentation surfaces
	// show before truncating. The engine always returns the full sets.
	WordPreview int `mapstructure:"word_preview" yaml:"word_preview" json:"word_preview"`
}
