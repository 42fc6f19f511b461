package store

import (
	"github.com/jonwraymond/ktcache/schema"
)

// Header is the immutable metadata of a cache document: everything a
// tuning session fixes before the first configuration is evaluated.
type Header struct {
	// DeviceName names the device the kernel is tuned on.
	DeviceName string

	// KernelName names the tuned kernel.
	KernelName string

	// ProblemSize is the problem size the kernel is tuned for.
	ProblemSize schema.ProblemSize

	// TuneParamsKeys lists the tune-parameter names in key-encoding order.
	TuneParamsKeys []string

	// TuneParams maps each parameter name to its candidate values. Its key
	// set must equal TuneParamsKeys.
	TuneParams map[string][]schema.Value

	// Objective names the metric being optimized, e.g. "time".
	Objective string
}

// Validate checks the header's parameter space: at least one parameter,
// no reserved or duplicate names, and candidate values for exactly the
// declared parameters. Violations are returned as schema.ValidationErrors.
func (h Header) Validate() error {
	if len(h.TuneParamsKeys) == 0 {
		return ErrNoTuneParams
	}
	if errs := schema.ValidateDocument(h.document()); len(errs) > 0 {
		return errs
	}
	return nil
}

// document builds an empty document carrying the header. The returned
// document shares the header's slices and maps; callers that keep it
// clone it first.
func (h Header) document() *schema.Document {
	return &schema.Document{
		SchemaVersion:  schema.Version,
		DeviceName:     h.DeviceName,
		KernelName:     h.KernelName,
		ProblemSize:    h.ProblemSize,
		TuneParamsKeys: h.TuneParamsKeys,
		TuneParams:     h.TuneParams,
		Objective:      h.Objective,
		Lines:          schema.NewLines(),
	}
}

// headerOf extracts a deep-copied Header from a document.
func headerOf(d *schema.Document) Header {
	h := Header{
		DeviceName:  d.DeviceName,
		KernelName:  d.KernelName,
		ProblemSize: d.ProblemSize,
		Objective:   d.Objective,
	}
	if d.TuneParamsKeys != nil {
		h.TuneParamsKeys = make([]string, len(d.TuneParamsKeys))
		copy(h.TuneParamsKeys, d.TuneParamsKeys)
	}
	if d.TuneParams != nil {
		h.TuneParams = make(map[string][]schema.Value, len(d.TuneParams))
		for name, vs := range d.TuneParams {
			copied := make([]schema.Value, len(vs))
			copy(copied, vs)
			h.TuneParams[name] = copied
		}
	}
	return h
}
