package fit_test

import (
	"fmt"
	"log"

	"github.com/cwbudde/algo-bath/fit"
)

func ExampleSpectralFitter_Fit() {
	// Sample a single underdamped mode and let the automatic order
	// selection recover it.
	ws := make([]float64, 300)
	js := make([]float64, 300)
	a, bb, c := 1.0, 0.5, 1.0
	for i := range ws {
		w := float64(i) * 10.0 / 299
		ws[i] = w
		js[i] = 2 * a * bb * w / (((w+c)*(w+c) + bb*bb) * ((w-c)*(w-c) + bb*bb))
	}

	f, err := fit.NewSpectralFitter(1.0, ws, js)
	if err != nil {
		log.Fatal(err)
	}
	res, err := f.Fit()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("modes: %d\n", res.N)
	fmt.Printf("converged: %v\n", res.RMSE < 5e-6)
	// Output:
	// modes: 1
	// converged: true
}
