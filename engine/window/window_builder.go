package window

// WindowBuilderOption is a functional option for configuring a Window.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the initial window title.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width in screen coordinates.
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height in screen coordinates.
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithMinSize sets the smallest size the window can be resized to.
// A zero dimension leaves that axis unconstrained.
//
// Parameters:
//   - width: the minimum width
//   - height: the minimum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithMaxSize sets the largest size the window can be resized to.
// A zero dimension leaves that axis unconstrained.
//
// Parameters:
//   - width: the maximum width
//   - height: the maximum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = width
		w.maxHeight = height
	}
}

// WithClientAPI selects the graphics API the window prepares for.
// Use ClientAPIOpenGL for the GL renderer backend.
//
// Parameters:
//   - api: the client API
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithClientAPI(api ClientAPI) WindowBuilderOption {
	return func(w *engineWindow) {
		w.clientAPI = api
	}
}

// WithSwapInterval sets the GL swap interval (1 waits for vertical blank, 0 does not).
// Ignored for ClientAPINone.
func WithSwapInterval(interval int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.swapInterval = interval
	}
}
