package fuzztests

import (
	"testing"

	"optimix/internal/testkit"
)

const maxFuzzInput = 16 << 10

func addCorpusSeeds(f *testing.F) {
	for _, p := range testkit.Programs() {
		f.Add([]byte(p.Source))
	}
	f.Add([]byte{})
	f.Add([]byte("int main() { return 0; }"))
	f.Add([]byte("int main() { while (1) { } }"))                                          // runaway loop
	f.Add([]byte("int main() { int a[0]; return a[0]; }"))                                 // empty array
	f.Add([]byte("int main() { int a[2]; int a[3]; return a[2]; }"))                       // reallocation
	f.Add([]byte("int main() { return x; }"))                                              // undefined
	f.Add([]byte("int main() { while (x) { while (y) { x = y; } y = x; } return x + y; }")) // nested merge
	f.Add([]byte("int main() { return 9223372036854775807 + 1; }"))                        // overflow
	f.Add([]byte("int main() { return -(-(-1)); }"))
	f.Add([]byte("int main() { ((((((((1)))))))) }"))
}

func clamp(input []byte) string {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return string(input)
}
