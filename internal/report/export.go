package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// Preset is one of the two fixed export resolutions. Mobile grows vertically
// with the number of kingdoms; desktop is cropped to its frame.
type Preset struct {
	Name     string
	Width    int
	Height   int
	FullPage bool
}

var (
	Mobile  = Preset{Name: "mobile", Width: 1080, Height: 1920, FullPage: true}
	Desktop = Preset{Name: "desktop", Width: 1920, Height: 1080}
)

var ErrUnknownPreset = errors.New("unknown export preset, use mobile or desktop")

func PresetByName(name string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Mobile.Name:
		return Mobile, nil
	case Desktop.Name:
		return Desktop, nil
	}
	return Preset{}, ErrUnknownPreset
}

func (p Preset) FileName() string {
	return fmt.Sprintf("KVK_REPORT_%s.png", strings.ToUpper(p.Name))
}

// Exporter rasterizes a rendered report page.
type Exporter interface {
	Export(ctx context.Context, html []byte, preset Preset) ([]byte, error)
}

// RodExporter drives a headless Chrome. The browser is launched on first use
// and shared by later exports.
type RodExporter struct {
	bin    string
	logger zerolog.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

func NewRodExporter(bin string, logger zerolog.Logger) *RodExporter {
	return &RodExporter{bin: bin, logger: logger}
}

func (e *RodExporter) connect() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New().Headless(true)
	if e.bin != "" {
		l = l.Bin(e.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	e.logger.Info().Str("control_url", controlURL).Msg("headless browser started")
	e.browser = browser
	return browser, nil
}

func (e *RodExporter) Export(ctx context.Context, html []byte, preset Preset) ([]byte, error) {
	browser, err := e.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			e.logger.Debug().Err(err).Msg("failed to close export page")
		}
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             preset.Width,
		Height:            preset.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for report layout: %w", err)
	}

	img, err := page.Screenshot(preset.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture report: %w", err)
	}

	e.logger.Debug().Str("preset", preset.Name).Int("bytes", len(img)).Msg("report exported")
	return img, nil
}

func (e *RodExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return nil
	}
	err := e.browser.Close()
	e.browser = nil
	return err
}
