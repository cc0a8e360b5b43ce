package upscale

// Package upscale runs the pre-built Real-ESRGAN NCNN executable. It locates
// the binary, constructs its command line, executes it in a background
// goroutine, and propagates coarse progress plus result/error callbacks to
// the UI. At most one task runs at a time.
