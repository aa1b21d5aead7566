//go:build windows

package ui

import (
	"fmt"
	"log"
	"runtime"
	"syscall"

	"cursor-snap/settings"

	"github.com/lxn/walk"
	"github.com/lxn/win"
)

// ShowSettings displays the settings dialog, pre-filled from the saved
// configuration, and persists the values when the user clicks Save. Blocks
// until the dialog closes. Runs its own message loop, so it must not be
// called from the overlay's thread.
func ShowSettings() error {
	// walk dialogs pump messages on the calling thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	dlg, err := walk.NewDialog(nil)
	if err != nil {
		return fmt.Errorf("create dialog: %w", err)
	}
	dlg.SetTitle("Cursor Snap - Settings")
	dlg.SetLayout(walk.NewVBoxLayout())

	// Save folder
	folderComp, err := walk.NewComposite(dlg)
	if err != nil {
		dlg.Dispose()
		return fmt.Errorf("create dialog: %w", err)
	}
	folderComp.SetLayout(walk.NewHBoxLayout())
	if l, err := walk.NewLabel(folderComp); err == nil {
		l.SetText("Save folder:")
	}
	folderEdit, _ := walk.NewLineEdit(folderComp)
	folderEdit.SetText(cfg.Folder)
	folderEdit.SetReadOnly(true)
	browseBtn, _ := walk.NewPushButton(folderComp)
	browseBtn.SetText("Browse...")
	browseBtn.Clicked().Attach(func() {
		if path, err := browseForFolder(dlg); err == nil && path != "" {
			folderEdit.SetText(path)
		}
	})

	// Capture size
	sizeComp, _ := walk.NewComposite(dlg)
	sizeComp.SetLayout(walk.NewHBoxLayout())
	if l, err := walk.NewLabel(sizeComp); err == nil {
		l.SetText("Capture size:")
	}
	widthEdit, _ := walk.NewNumberEdit(sizeComp)
	widthEdit.SetRange(1, 10000)
	widthEdit.SetDecimals(0)
	widthEdit.SetValue(float64(cfg.Width))
	if l, err := walk.NewLabel(sizeComp); err == nil {
		l.SetText("x")
	}
	heightEdit, _ := walk.NewNumberEdit(sizeComp)
	heightEdit.SetRange(1, 10000)
	heightEdit.SetDecimals(0)
	heightEdit.SetValue(float64(cfg.Height))

	// Hotkey
	hotkeyComp, _ := walk.NewComposite(dlg)
	hotkeyComp.SetLayout(walk.NewHBoxLayout())
	if l, err := walk.NewLabel(hotkeyComp); err == nil {
		l.SetText("Hotkey:")
	}
	hotkeyEdit, _ := walk.NewLineEdit(hotkeyComp)
	hotkeyEdit.SetText(cfg.Hotkey)
	hotkeyEdit.SetToolTipText("Combination like Ctrl+G. Takes effect after restart.")

	// Clipboard
	clipComp, _ := walk.NewComposite(dlg)
	clipComp.SetLayout(walk.NewHBoxLayout())
	clipCheck, _ := walk.NewCheckBox(clipComp)
	clipCheck.SetText("Also copy captures to the clipboard")
	clipCheck.SetChecked(cfg.CopyToClipboard)

	// Buttons
	btnComp, _ := walk.NewComposite(dlg)
	btnComp.SetLayout(walk.NewHBoxLayout())
	_, _ = walk.NewHSpacer(btnComp)
	saveBtn, _ := walk.NewPushButton(btnComp)
	saveBtn.SetText("Save")
	saveBtn.Clicked().Attach(func() {
		cfg.Folder = folderEdit.Text()
		cfg.Width = int(widthEdit.Value())
		cfg.Height = int(heightEdit.Value())
		cfg.Hotkey = hotkeyEdit.Text()
		cfg.CopyToClipboard = clipCheck.Checked()
		if err := cfg.Validate(); err != nil {
			showError(fmt.Sprintf("Invalid settings: %v", err))
			return
		}
		dlg.Accept()
	})
	cancelBtn, _ := walk.NewPushButton(btnComp)
	cancelBtn.SetText("Cancel")
	cancelBtn.Clicked().Attach(func() {
		dlg.Cancel()
	})

	dlg.SetDefaultButton(saveBtn)
	dlg.SetCancelButton(cancelBtn)

	if dlg.Run() != walk.DlgCmdOK {
		log.Printf("Settings: dialog cancelled")
		return nil
	}

	if err := cfg.Save(); err != nil {
		showError(fmt.Sprintf("Could not save settings: %v", err))
		return fmt.Errorf("save settings: %w", err)
	}
	log.Printf("Settings: saved %dx%d, folder %s", cfg.Width, cfg.Height, cfg.Folder)
	return nil
}

func showError(msg string) {
	title, _ := syscall.UTF16PtrFromString("Cursor Snap")
	text, _ := syscall.UTF16PtrFromString(msg)
	win.MessageBox(0, text, title, win.MB_OK|win.MB_ICONERROR)
}
