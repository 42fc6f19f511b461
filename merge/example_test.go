package merge_test

import (
	"fmt"
	"strings"

	"github.com/jonwraymond/ktcache/merge"
	"github.com/jonwraymond/ktcache/schema"
	"github.com/jonwraymond/ktcache/store"
)

func sessionDoc(lines map[string]schema.TimeValue, order ...string) *schema.Document {
	s, err := store.New(store.Header{
		DeviceName:     "NVIDIA RTX A4000",
		KernelName:     "vector_add",
		ProblemSize:    schema.IntProblemSize(10000000),
		TuneParamsKeys: []string{"block_size_x"},
		TuneParams: map[string][]schema.Value{
			"block_size_x": schema.MustValues(128, 256, 512),
		},
		Objective: "time",
	})
	if err != nil {
		panic(err)
	}
	for _, key := range order {
		if err := s.Upsert(key, &schema.Record{Time: lines[key]}); err != nil {
			panic(err)
		}
	}
	return s.Document()
}

func ExampleDocuments() {
	// Two partial sessions on the same kernel: the first crashed on 256,
	// the second retried it successfully.
	first := sessionDoc(map[string]schema.TimeValue{
		"128": schema.Measured(1.5),
		"256": schema.Failed(schema.RuntimeFailedConfig),
	}, "128", "256")
	second := sessionDoc(map[string]schema.TimeValue{
		"256": schema.Measured(2.5),
		"512": schema.Measured(3.5),
	}, "256", "512")

	merged, err := merge.Documents([]*schema.Document{first, second})
	if err != nil {
		panic(err)
	}

	fmt.Println(strings.Join(merged.Lines.Keys(), " "))
	rec, _ := merged.Lines.Get("256")
	fmt.Println(rec.Time)
	// Output:
	// 128 256 512
	// 2.5
}
