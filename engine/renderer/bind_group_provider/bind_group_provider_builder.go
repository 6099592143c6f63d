package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithSize records the byte size requested for the provider's primary buffer.
//
// Parameters:
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that sets the size
func WithSize(size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.size = size
	}
}

// WithReleaseHook registers a function that runs once, after the provider's GPU objects have
// been released. The renderer uses it to keep its live-resource count.
//
// Parameters:
//   - hook: the function to run on release
//
// Returns:
//   - BindGroupProviderOption: a function that sets the release hook
func WithReleaseHook(hook func(BindGroupProvider)) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.onRelease = hook
	}
}
