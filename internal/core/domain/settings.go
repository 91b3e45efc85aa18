package domain

const unknownDescription = "Unknown"

// OCREngine identifies the text recognition backend.
// The core never chooses an engine; configuration does.
type OCREngine string

// Available OCR engines.
const (
	// OCREngineTesseract is the local Tesseract engine (requires the ocr build tag).
	OCREngineTesseract OCREngine = "tesseract"

	// OCREngineDocumentAI is Google Cloud Document AI.
	OCREngineDocumentAI OCREngine = "documentai"
)

// IsValid returns true if the engine is recognised.
func (e OCREngine) IsValid() bool {
	switch e {
	case OCREngineTesseract, OCREngineDocumentAI:
		return true
	default:
		return false
	}
}

// IsLocal returns true if the engine runs on this machine.
func (e OCREngine) IsLocal() bool {
	return e == OCREngineTesseract
}

// String returns the string representation.
func (e OCREngine) String() string {
	return string(e)
}

// Description returns a human-readable description of the engine.
func (e OCREngine) Description() string {
	switch e {
	case OCREngineTesseract:
		return "Tesseract (local)"
	case OCREngineDocumentAI:
		return "Google Document AI (cloud)"
	default:
		return unknownDescription
	}
}

// AllOCREngines returns all available OCR engines.
func AllOCREngines() []OCREngine {
	return []OCREngine{OCREngineTesseract, OCREngineDocumentAI}
}

// ExportFormat selects how the corrected document is written.
type ExportFormat string

// Available export formats.
const (
	// ExportAuto prefers lossless PDF export and falls back to rasters.
	ExportAuto ExportFormat = "auto"

	// ExportPDF re-sequences and rotates the source PDF's pages losslessly.
	ExportPDF ExportFormat = "pdf"

	// ExportRaster assembles a new PDF from rendered page rasters.
	ExportRaster ExportFormat = "raster"
)

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportAuto, ExportPDF, ExportRaster:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f ExportFormat) String() string {
	return string(f)
}

// OCRSettings configures text recognition.
type OCRSettings struct {
	// Engine selects the recognition backend.
	Engine OCREngine

	// Languages are engine language codes such as "eng" or "deu".
	Languages []string
}

// DocumentAISettings configures the Document AI processor.
type DocumentAISettings struct {
	ProjectID   string
	Location    string
	ProcessorID string

	// CredentialsFile is a service account key path.
	// Empty uses GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsFile string
}

// IsConfigured returns true if a processor is addressable.
func (d DocumentAISettings) IsConfigured() bool {
	return d.ProjectID != "" && d.Location != "" && d.ProcessorID != ""
}

// ExportSettings configures the corrected document output.
type ExportSettings struct {
	Format ExportFormat
}

// AppSettings aggregates all application configuration.
type AppSettings struct {
	Correction CorrectionConfig
	OCR        OCRSettings
	DocumentAI DocumentAISettings
	Export     ExportSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Correction: DefaultCorrectionConfig(),
		OCR: OCRSettings{
			Engine:    OCREngineTesseract,
			Languages: []string{"eng"},
		},
		DocumentAI: DocumentAISettings{
			Location: "us",
		},
		Export: ExportSettings{
			Format: ExportAuto,
		},
	}
}
