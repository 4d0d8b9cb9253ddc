package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"

	"github.com/arlaunch/arlaunch/pkg/ar"
	"github.com/arlaunch/arlaunch/pkg/armode"
	"github.com/arlaunch/arlaunch/pkg/browser"
)

// printNavigator is a Navigator that prints what a browser would do
// instead of doing it.
type printNavigator struct {
	page *url.URL
}

func (n *printNavigator) PageURL() *url.URL { return n.page }

func (n *printNavigator) Launch(a ar.Activation) error {
	if a.QuickLook {
		fmt.Println("would click a rel=\"ar\" anchor pointing at:")
	} else {
		fmt.Println("would click a transient anchor pointing at:")
	}
	fmt.Println(" ", a.URL)
	return nil
}

func (n *printNavigator) OnHashChange(func(string)) (cancel func()) { return func() {} }
func (n *printNavigator) Back() error                               { return nil }
func (n *printNavigator) OnMessage(func(string)) (cancel func())    { return func() {} }

// printRenderer pretends every immersive session works.
type printRenderer struct{}

func (printRenderer) SupportsPresentation(ctx context.Context) (bool, error) { return true, nil }
func (printRenderer) Present(ctx context.Context) error {
	fmt.Println("would start an immersive-ar session")
	return nil
}
func (printRenderer) StopPresenting(ctx context.Context) error { return nil }
func (printRenderer) Loaded() bool                             { return true }
func (printRenderer) WaitForLoad(ctx context.Context) error    { return nil }
func (printRenderer) OnStatus(func(ar.Status)) (cancel func()) { return func() {} }

func main() {
	// Usage: go run main.go -ua "<user agent>" -src model.glb -ios-src model.usdz -page https://shop.example/product

	uaFlag := flag.String("ua", "", "User agent of the browser to emulate (default: Chrome on a Pixel 8)")
	srcFlag := flag.String("src", "", "glb/gltf model URL")
	iosSrcFlag := flag.String("ios-src", "", "usdz model URL for Quick Look")
	pageFlag := flag.String("page", "https://shop.example/product", "Page the viewer element lives on")
	titleFlag := flag.String("title", "Demo model", "Viewer title")

	// Parse the command-line flags
	flag.Parse()

	if *srcFlag == "" {
		fmt.Println("A model is required. Please provide one using the -src flag.")
		return
	}

	userAgent := *uaFlag
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	}

	page, err := url.Parse(*pageFlag)
	if err != nil {
		fmt.Println("Invalid page URL:", err)
		return
	}

	feature, err := ar.New(printRenderer{}, &printNavigator{page: page}, ar.Options{
		Env:    browser.DetectEnvironment(userAgent),
		Blocks: armode.NewBlocks(),
		OnStatus: func(ev ar.StatusEvent) {
			fmt.Println("status:", ev.Status)
		},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer feature.Close()

	err = feature.SetConfig(context.Background(), ar.Config{
		AR:        true,
		Source:    *srcFlag,
		IOSSource: *iosSrcFlag,
		Title:     *titleFlag,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("selected mode:", feature.Mode())

	if err := feature.ActivateAR(context.Background()); err != nil {
		fmt.Println("activation failed:", err)
	}
}
