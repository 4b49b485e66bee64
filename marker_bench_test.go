package shirushi

import (
	"fmt"
	"testing"
)

type benchTag struct{}

func benchSizes() []int {
	return []int{1000, 10000, 100000}
}

func BenchmarkMarkedWith(b *testing.B) {
	for _, size := range benchSizes() {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			tagged := NewMarking[benchTag]()
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				cmds := NewCommands(w)
				b.StartTimer()
				for i := range size {
					tagged.MarkedWith(cmds, Of2(position{X: float32(i)}, velocity{}))
				}
				cmds.Apply()
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkMarkedBatch(b *testing.B) {
	for _, size := range benchSizes() {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			tagged := NewMarking[benchTag]()
			payloads := make([]Bundle2[position, velocity], size)
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				cmds := NewCommands(w)
				b.StartTimer()
				tagged.MarkedBatch(cmds, Bundles(payloads...))
				cmds.Apply()
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkMarkedFilter(b *testing.B) {
	for _, size := range benchSizes() {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			w := NewWorld(size)
			cmds := NewCommands(w)
			tagged := NewMarking[benchTag]()
			tagged.MarkedBatch(cmds, Bundles(make([]Bundle1[position], size)...))
			cmds.Apply()
			f := NewFilter2[position, benchTag](w)
			for b.Loop() {
				f.Reset()
				for f.Next() {
					p, _ := f.Get()
					p.X++
				}
			}
			b.ReportAllocs()
		})
	}
}
