package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/imgup/upscaler/internal/config"
)

// ShowSettingsDialog displays the application settings dialog. onApplied runs
// after the user confirms, so the caller can re-check the executable.
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, onApplied func()) {
	exeEntry := widget.NewEntry()
	exeEntry.SetPlaceHolder("Auto-detect next to the application")
	exeEntry.SetText(settings.GetExecutablePath())

	browseBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			exeEntry.SetText(reader.URI().Path())
			reader.Close()
		}, window)
	})

	openAfterCheck := widget.NewCheck("Open result after upscaling", nil)
	openAfterCheck.SetChecked(settings.GetOpenAfterUpscale())

	formatSelect := widget.NewSelect(config.OutputFormatOptions, nil)
	formatSelect.SetSelected(settings.GetOutputFormat())

	content := container.NewVBox(
		widget.NewLabelWithStyle("NCNN Executable", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, nil, browseBtn, exeEntry),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Defaults", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Output Format:"), nil, formatSelect),
		openAfterCheck,
	)

	d := dialog.NewCustomConfirm("Settings", "Save", "Cancel", content, func(save bool) {
		if !save {
			return
		}

		settings.SetExecutablePath(exeEntry.Text)
		settings.SetOpenAfterUpscale(openAfterCheck.Checked)
		if formatSelect.Selected != "" {
			settings.SetOutputFormat(formatSelect.Selected)
		}

		if onApplied != nil {
			onApplied()
		}
	}, window)

	d.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
	d.Show()
}
