package builder

import (
	"fmt"
	"testing"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/internal/writer"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// actorList builds a document shaped like a stage actor list.
func actorList(n int) Node {
	objs := NewArray()
	for i := range n {
		objs.PushDict(NewDict().
			SetString("UnitConfigName", fmt.Sprintf("Obj_%d", i%50)).
			SetU32("HashId", uint32(i)).
			SetI64("SRTHash", int64(i)*7919).
			SetDict("Translate", NewDict().SetF32("X", float32(i)).SetF32("Y", 0).SetF32("Z", -float32(i))).
			SetArray("Links", NewArray().PushU32(uint32(i+1))))
	}
	return DictNode(NewDict().SetArray("Objs", objs))
}

func BenchmarkMarshal(b *testing.B) {
	for _, n := range []int{100, 5000} {
		root := actorList(n)
		b.Run(fmt.Sprintf("actors_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Marshal(root, DefaultOptions()); err != nil {
					b.Fatalf("marshal: %v", err)
				}
			}
		})
	}
}

func BenchmarkWriteBuffer(b *testing.B) {
	root := actorList(1000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w := writer.NewBuffer(0)
		if err := Write(w, root, DefaultOptions()); err != nil {
			b.Fatalf("write: %v", err)
		}
	}
}

func BenchmarkOpenVerify(b *testing.B) {
	data, err := Marshal(actorList(5000), DefaultOptions())
	if err != nil {
		b.Fatalf("marshal: %v", err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc, err := byml.Open(data, types.LittleEndian)
		if err != nil {
			b.Fatalf("open: %v", err)
		}
		if err := byml.Verify(doc); err != nil {
			b.Fatalf("verify: %v", err)
		}
	}
}

func BenchmarkLookup(b *testing.B) {
	data, err := Marshal(actorList(5000), DefaultOptions())
	if err != nil {
		b.Fatalf("marshal: %v", err)
	}
	doc, err := byml.Open(data, types.LittleEndian)
	if err != nil {
		b.Fatalf("open: %v", err)
	}
	root, _ := doc.Root()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, ok, err := byml.Lookup(root, "Objs/4321/Translate/X")
		if err != nil || !ok {
			b.Fatalf("lookup: ok=%v err=%v", ok, err)
		}
		if _, err := n.AsF32(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	data, err := Marshal(actorList(1000), DefaultOptions())
	if err != nil {
		b.Fatalf("marshal: %v", err)
	}
	doc, err := byml.Open(data, types.LittleEndian)
	if err != nil {
		b.Fatalf("open: %v", err)
	}
	root, _ := doc.Root()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := root.Decode(); err != nil {
			b.Fatal(err)
		}
	}
}
