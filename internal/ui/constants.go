package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Window and pane sizing
const (
	WindowWidth  float32 = 1200
	WindowHeight float32 = 800

	ImagePaneMinWidth  float32 = 400
	ImagePaneMinHeight float32 = 400

	SettingsDialogWidth  float32 = 500
	SettingsDialogHeight float32 = 320
)

// Labels and placeholders
const (
	AppTitle = "Real-ESRGAN NCNN Image Upscaler"

	InputPaneTitle  = "Input Image"
	OutputPaneTitle = "Output Image"

	NoImageText  = "No image selected"
	NoOutputText = "No output yet"

	StatusReady      = "Ready"
	StatusProcessing = "Processing..."
	StatusError      = "Error occurred"
)

// Button texts
const (
	LoadButtonText    = "Load Image"
	ProcessButtonText = "Process Image"
	SaveButtonText    = "Save Result"
)
