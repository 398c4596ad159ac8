//go:build windows

package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os/exec"

	ico "github.com/Kodeworks/golang-image-ico"
	"github.com/getlantern/systray"

	"github.com/juanmmendes/monitor-sistema/internal/version"
	"github.com/juanmmendes/monitor-sistema/web"
)

// startTray runs the Windows system tray icon. It blocks until the tray
// exits; systray requires the main thread.
func startTray(app *App) {
	onReady := func() {
		if icon := trayIcon(); len(icon) > 0 {
			systray.SetIcon(icon)
		}
		systray.SetTitle("Monitor Sistema")
		systray.SetTooltip(fmt.Sprintf("Monitor Sistema %s", version.String()))

		mOpen := systray.AddMenuItem("Open Dashboard", "Open the dashboard in a browser")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Stop the monitor")

		go func() {
			for {
				select {
				case <-mOpen.ClickedCh:
					app.log.Info().Msg("tray: open dashboard")
					_ = launchBrowser(fmt.Sprintf("http://localhost:%d", app.cfg.Port))
				case <-mQuit.ClickedCh:
					app.log.Info().Msg("tray: quit")
					systray.Quit()
				}
			}
		}()
	}

	systray.Run(onReady, func() {})
}

// trayQuit ends the tray loop, unblocking startTray.
func trayQuit() {
	systray.Quit()
}

// trayIcon converts the embedded PNG into the ICO bytes systray expects on
// Windows.
func trayIcon() []byte {
	data, err := web.Assets.ReadFile("static/monitor.png")
	if err != nil {
		return nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func launchBrowser(url string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
}
