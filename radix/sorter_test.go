package radix

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"testing"

	"github.com/ChristianF88/bitsort/parallel"
	"github.com/ChristianF88/bitsort/testutil"
	"github.com/google/go-cmp/cmp"
)

func newTestSorter(t *testing.T, opts ...Option) *Sorter[uint32] {
	t.Helper()
	s := New[uint32](opts...)
	t.Cleanup(s.Close)
	return s
}

func TestSortSample(t *testing.T) {
	got, err := Sort(testutil.SampleInput())
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if diff := cmp.Diff(testutil.SampleSorted(), got); diff != "" {
		t.Errorf("Sort mismatch (-want +got):\n%s", diff)
	}
}

func TestSortEmpty(t *testing.T) {
	s := newTestSorter(t)
	got, err := s.Sort([]uint32{})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Sort([]) = %#v, want empty non-nil slice", got)
	}

	got, err = s.Sort(nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Sort(nil) = %v, %v; want empty, nil", got, err)
	}
}

func TestSortSingle(t *testing.T) {
	s := newTestSorter(t)
	got, err := s.Sort([]uint32{42})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{42}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSortAllSame(t *testing.T) {
	rec := NewRecorder(false)
	s := newTestSorter(t, WithTracer(rec))

	got, err := s.Sort([]uint32{7, 7, 7})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{7, 7, 7}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if n := len(rec.Passes()); n != 3 {
		t.Errorf("got %d passes, want 3 (bit length of 7)", n)
	}
}

func TestSortAllZeroRunsNoPass(t *testing.T) {
	rec := NewRecorder(false)
	s := newTestSorter(t, WithTracer(rec))

	got, err := s.Sort([]uint32{0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{0, 0, 0, 0}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if plan := rec.Plan(); plan.Digits != 0 {
		t.Errorf("Digits = %d, want 0", plan.Digits)
	}
	if n := len(rec.Passes()); n != 0 {
		t.Errorf("got %d passes, want 0", n)
	}
}

func TestSortDoesNotModifyInput(t *testing.T) {
	s := newTestSorter(t)
	in := testutil.SampleInput()
	if _, err := s.Sort(in); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testutil.SampleInput(), in); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestSortLargeValues(t *testing.T) {
	s := newTestSorter(t, WithGrain(1))
	got, err := s.Sort([]uint32{0xFFFFFFFF, 0, 0x80000000, 1, 0x7FFFFFFF})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSortParityOfDigits(t *testing.T) {
	// Odd and even pass counts end in different buffers.
	s := newTestSorter(t, WithGrain(1))
	for _, maxValue := range []uint32{1, 2, 3, 4, 8, 255, 256} {
		in := []uint32{maxValue, 0, maxValue / 2, 1}
		got, err := s.Sort(in)
		if err != nil {
			t.Fatal(err)
		}
		want := slices.Clone(in)
		slices.Sort(want)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("max %d: mismatch (-want +got):\n%s", maxValue, diff)
		}
	}
}

func TestSortMatchesStdSort(t *testing.T) {
	sizes := []int{2, 63, 64, 65, 1000, 65535, 65536, 200000}
	configs := []struct {
		workers, grain int
	}{
		{1, 1},
		{4, 1},
		{4, 1000},
		{0, 0},
	}

	for _, size := range sizes {
		for _, c := range configs {
			t.Run(fmt.Sprintf("size_%d_w%d_g%d", size, c.workers, c.grain), func(t *testing.T) {
				s := newTestSorter(t, WithWorkers(c.workers), WithGrain(c.grain))
				data := testutil.RandomUint32(int64(size), size, 0)

				got, err := s.Sort(data)
				if err != nil {
					t.Fatal(err)
				}

				want := slices.Clone(data)
				sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
				if !slices.Equal(want, got) {
					t.Fatalf("radix sort differs from sort.Slice for size %d", size)
				}
			})
		}
	}
}

func TestSortIdempotent(t *testing.T) {
	s := newTestSorter(t, WithGrain(16))
	data := testutil.RandomUint32(5, 5000, 1<<20)

	once, err := s.Sort(data)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := s.Sort(once)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("sort(sort(x)) != sort(x) (-once +twice):\n%s", diff)
	}
}

func TestSortOtherWidths(t *testing.T) {
	s8 := New[uint8](WithGrain(1))
	defer s8.Close()
	got8, err := s8.Sort([]uint8{200, 3, 255, 0, 3})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint8{0, 3, 3, 200, 255}, got8); diff != "" {
		t.Errorf("uint8 mismatch (-want +got):\n%s", diff)
	}

	s64 := New[uint64](WithGrain(1))
	defer s64.Close()
	in64 := []uint64{math.MaxUint64, 1 << 40, 0, 1<<40 + 1, 17}
	got64, err := s64.Sort(in64)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{0, 17, 1 << 40, 1<<40 + 1, math.MaxUint64}, got64); diff != "" {
		t.Errorf("uint64 mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRejectsAboveMaxLength(t *testing.T) {
	s := newTestSorter(t, WithMaxLength(4))
	if s.MaxLength() != 4 {
		t.Fatalf("MaxLength() = %d, want 4", s.MaxLength())
	}

	in := []uint32{5, 4, 3, 2, 1}
	got, err := s.Sort(in)
	if !errors.Is(err, ErrCounterOverflow) {
		t.Fatalf("expected ErrCounterOverflow, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no output on rejection, got %v", got)
	}
	if diff := cmp.Diff([]uint32{5, 4, 3, 2, 1}, in); diff != "" {
		t.Errorf("input modified on rejection (-want +got):\n%s", diff)
	}

	if _, err := s.Sort(in[:4]); err != nil {
		t.Errorf("input at the limit rejected: %v", err)
	}
}

func TestWithMaxLengthClamped(t *testing.T) {
	for _, n := range []int64{0, -1, MaxLength + 1} {
		s := New[uint32](WithMaxLength(n))
		if s.MaxLength() != MaxLength {
			t.Errorf("WithMaxLength(%d): MaxLength() = %d, want %d", n, s.MaxLength(), MaxLength)
		}
		s.Close()
	}
}

func TestSortPairsStable(t *testing.T) {
	s := newTestSorter(t, WithGrain(2))

	keys := []uint32{3, 1, 3, 2, 1, 3, 0, 2}
	tags := []int{0, 1, 2, 3, 4, 5, 6, 7}

	gotKeys, gotTags, err := SortPairs(s, keys, tags)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{0, 1, 1, 2, 2, 3, 3, 3}, gotKeys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{6, 1, 4, 3, 7, 0, 2, 5}, gotTags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestSortPairsStableRandom(t *testing.T) {
	s := newTestSorter(t, WithGrain(64))
	keys := testutil.RandomUint32(21, 20000, 50)
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}

	gotKeys, gotIdx, err := SortPairs(s, keys, idx)
	if err != nil {
		t.Fatal(err)
	}

	want := slices.Clone(idx)
	sort.SliceStable(want, func(i, j int) bool { return keys[want[i]] < keys[want[j]] })
	if diff := cmp.Diff(want, gotIdx); diff != "" {
		t.Errorf("payload order differs from stable sort (-want +got):\n%s", diff)
	}
	for i, k := range gotKeys {
		if keys[gotIdx[i]] != k {
			t.Fatalf("key %d at %d does not match payload index %d", k, i, gotIdx[i])
		}
	}
}

func TestSortPairsLengthMismatch(t *testing.T) {
	s := newTestSorter(t)
	_, _, err := SortPairs(s, []uint32{1, 2}, []string{"a"})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestTracerSeesEveryPass(t *testing.T) {
	rec := NewRecorder(true)
	s := newTestSorter(t, WithTracer(rec), WithWorkers(3), WithGrain(2))

	in := testutil.SampleInput()
	if _, err := s.Sort(in); err != nil {
		t.Fatal(err)
	}

	plan := rec.Plan()
	if plan.Length != len(in) || plan.MaxValue != 84 || plan.Digits != 7 || plan.CounterBits != 16 {
		t.Errorf("unexpected plan %+v", plan)
	}
	if plan.Workers != 3 || plan.Grain != 2 {
		t.Errorf("plan workers/grain = %d/%d, want 3/2", plan.Workers, plan.Grain)
	}

	passes := rec.Passes()
	if len(passes) != 7 {
		t.Fatalf("got %d passes, want 7", len(passes))
	}
	for i, p := range passes {
		if p.Bit != uint(i) || p.Mask != 1<<uint(i) {
			t.Errorf("pass %d: bit %d mask %#x", i, p.Bit, p.Mask)
		}
		if p.Zeros+p.Ones != len(in) {
			t.Errorf("pass %d: zeros %d + ones %d != %d", i, p.Zeros, p.Ones, len(in))
		}
		if p.Detail == nil {
			t.Fatalf("pass %d: missing detail on verbose tracer", i)
		}
		for j := range p.Detail.ZeroCounts {
			if p.Detail.ZeroCounts[j]+p.Detail.OneCounts[j] != uint64(j+1) {
				t.Fatalf("pass %d: count invariant broken at %d", i, j)
			}
		}
		if i > 0 && !slices.Equal(passes[i-1].Detail.Output, p.Detail.Input) {
			t.Errorf("pass %d input is not pass %d output", i, i-1)
		}
	}

	// First pass from the worked example: bit 0 of the sample.
	wantLabels := []Label{0, 0, 1, 0, 0, 0, 0, 0, 1, 1}
	if diff := cmp.Diff(wantLabels, passes[0].Detail.Labels); diff != "" {
		t.Errorf("pass 0 labels mismatch (-want +got):\n%s", diff)
	}
	wantOut := []uint64{32, 12, 2, 64, 12, 4, 84, 5, 1, 3}
	if diff := cmp.Diff(wantOut, passes[0].Detail.Output); diff != "" {
		t.Errorf("pass 0 output mismatch (-want +got):\n%s", diff)
	}
}

func TestTracerNotVerbose(t *testing.T) {
	rec := NewRecorder(false)
	s := newTestSorter(t, WithTracer(rec))
	if _, err := s.Sort([]uint32{3, 1, 2}); err != nil {
		t.Fatal(err)
	}
	for _, p := range rec.Passes() {
		if p.Detail != nil {
			t.Fatal("detail filled for non-verbose tracer")
		}
	}
}

func TestTee(t *testing.T) {
	a, b := NewRecorder(false), NewRecorder(true)
	tr := Tee(a, b)
	if !tr.Verbose() {
		t.Error("Tee should be verbose when any tracer is")
	}

	s := newTestSorter(t, WithTracer(tr))
	if _, err := s.Sort([]uint32{4, 1}); err != nil {
		t.Fatal(err)
	}
	if len(a.Passes()) != 3 || len(b.Passes()) != 3 {
		t.Errorf("tee passes = %d/%d, want 3/3", len(a.Passes()), len(b.Passes()))
	}
}

func TestSharedPool(t *testing.T) {
	pool := parallel.New(2, 1)
	defer pool.Close()

	s := New[uint32](WithPool(pool))
	s.Close() // must not close a shared pool

	if s.Pool() != pool {
		t.Fatal("Sorter did not use the shared pool")
	}
	got, err := s.Sort([]uint32{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{1, 2}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSortConcurrentUse(t *testing.T) {
	s := newTestSorter(t, WithWorkers(4), WithGrain(128))
	errs := make(chan error, 8)

	for g := 0; g < 8; g++ {
		go func(seed int64) {
			data := testutil.RandomUint32(seed, 10000, 0)
			got, err := s.Sort(data)
			if err != nil {
				errs <- err
				return
			}
			if !slices.IsSorted(got) {
				errs <- fmt.Errorf("seed %d: output not sorted", seed)
				return
			}
			errs <- nil
		}(int64(g))
	}

	for g := 0; g < 8; g++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func BenchmarkSort(b *testing.B) {
	for _, size := range []int{1000, 100000, 1000000} {
		original := testutil.RandomUint32(42, size, 0)

		b.Run(fmt.Sprintf("BitRadix_%d", size), func(b *testing.B) {
			s := New[uint32]()
			defer s.Close()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Sort(original); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("ByteRadix_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				data := slices.Clone(original)
				SequentialSort(data)
			}
		})
	}
}
