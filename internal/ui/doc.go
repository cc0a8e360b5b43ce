package ui

// Package ui contains the Fyne-based desktop user interface: the main window
// with side-by-side input/output image panes, the model/scale/format
// controls, the progress section, and the settings dialog. It wires user
// interactions to the upscale service and renders results.
