package i18n

// Hook observes Get calls. AfterGet sees the internal error even though Get
// itself degrades to the key text, which makes hooks the place to meter
// missing translations.
type Hook interface {
	BeforeGet(ctx *HookContext)
	AfterGet(ctx *HookContext)
}

// HookContext carries one Get call through its hooks.
type HookContext struct {
	Locale string
	Key    string
	Params []Param
	Result string
	Err    error
	Cached bool
}

// HookFuncs adapts bare functions to Hook. Nil fields are skipped.
type HookFuncs struct {
	Before func(ctx *HookContext)
	After  func(ctx *HookContext)
}

func (h HookFuncs) BeforeGet(ctx *HookContext) {
	if h.Before != nil {
		h.Before(ctx)
	}
}

func (h HookFuncs) AfterGet(ctx *HookContext) {
	if h.After != nil {
		h.After(ctx)
	}
}
