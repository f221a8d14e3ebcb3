package mapty

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/mapty/internal/go_func_utils"
)

// BaseUIView contains the logic shared by all UI implementations: wiring
// the controller, keeping the log pane filled and tracking its size.
type BaseUIView struct {
	uiViewImpl UIViewImpl
	appModel   *AppModel
	app        *App
	context    context.Context
	cancelFunc context.CancelFunc
	waitGroup  sync.WaitGroup
	logger     *log.Logger

	resizeInterval time.Duration
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl UIViewImpl
	AppModel   *AppModel
	App        *App
	Logger     *log.Logger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.AppModel == nil {
		panic("BaseUIView: AppModel cannot be nil")
	}
	if args.App == nil {
		panic("BaseUIView: App cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:     args.UIViewImpl,
		appModel:       args.AppModel,
		app:            args.App,
		context:        ctx,
		cancelFunc:     cancel,
		logger:         args.Logger,
		resizeInterval: 100 * time.Millisecond,
	}

	args.UIViewImpl.Initialize(args.App)
	args.UIViewImpl.SetupKeyboardHandlers(args.App)

	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, "BaseUIView resize monitor", func() { base.monitorLogResize() })
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

func (base *BaseUIView) setupEventListeners() {
	logChan := make(chan string, 1)
	logUnregister := base.appModel.ListenToLog(logChan)
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, "BaseUIView log listener", func() {
		defer base.waitGroup.Done()
		defer logUnregister()
		for {
			select {
			case <-base.context.Done():
				return
			case _, ok := <-logChan:
				if !ok {
					return
				}
				base.updateLogDisplay()
			}
		}
	})
}

func (base *BaseUIView) updateLogDisplay() {
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}
	base.uiViewImpl.ShowLogLines(base.appModel.GetLogTail(height))
}

func (base *BaseUIView) monitorLogResize() {
	defer base.waitGroup.Done()
	var lastHeight int
	ticker := time.NewTicker(base.resizeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}
