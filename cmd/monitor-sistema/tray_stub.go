//go:build !windows

package main

// startTray is a no-op off Windows; main never takes the tray branch there.
func startTray(app *App) {}

// trayQuit matches the Windows build; nothing to unblock here.
func trayQuit() {}
