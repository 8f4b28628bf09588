package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kacperjurak/goarraycore"
	"github.com/kacperjurak/goarraycore/internal/processing"
	"github.com/kacperjurak/goarraycore/pkg/chart"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/profiling"
)

func main() {
	cfg, serverCfg, err := config.LoadFromArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	f := &cfg.Field
	flag.String("config", "", "YAML configuration file")
	flag.Float64Var(&f.Frequency, "freq", f.Frequency, "Drive frequency (Hz)")
	flag.Float64Var(&f.SoundSpeed, "c", f.SoundSpeed, "Speed of sound (m/s)")
	flag.Float64Var(&f.OuterRadius, "r", f.OuterRadius, "Outer aperture radius (m)")
	flag.IntVar(&f.Rings, "n", f.Rings, "Number of rings")
	flag.Float64Var(&f.GapWavelengths, "gap", f.GapWavelengths, "Kerf between rings (wavelengths)")
	flag.BoolVar(&f.FitAperture, "fit", f.FitAperture, "Fit the outermost ring to the aperture edge")
	flag.Float64Var(&f.Focal, "focal", f.Focal, "Focal distance (m)")
	flag.StringVar(&f.Mode, "m", f.Mode, "Sweep mode: angular or distance")
	flag.Float64Var(&f.Distance, "dist", f.Distance, "Observation distance for angular sweeps (m)")
	flag.Float64Var(&f.Angle, "angle", f.Angle, "Observation angle for distance sweeps (rad)")
	flag.StringVar(&f.FocusMethod, "method", f.FocusMethod, "Focus search: nelder-mead, lbfgs or empty to skip")
	flag.Var(&cfg.Gaps, "g", "Gap multiples to sweep, in wavelengths (repeatable)")
	flag.BoolVar(&cfg.ImgOut, "imgout", cfg.ImgOut, "Image data to STDOUT")
	flag.UintVar(&cfg.ImgSize, "imgsize", cfg.ImgSize, "Image size (inches)")
	flag.BoolVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Use concurrency for gap sweeps")
	flag.UintVar(&cfg.Threads, "threads", cfg.Threads, "Number of threads to use for calculations")
	flag.BoolVar(&cfg.HTTPServer, "http", cfg.HTTPServer, "Start HTTP server")
	flag.BoolVar(&cfg.EnableProfiling, "profile", cfg.EnableProfiling, "Log timing and allocations, enable pprof with -http")
	flag.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "Quiet mode")
	flag.Parse()

	if cfg.HTTPServer {
		startHTTPServer(cfg, serverCfg)
		return
	}

	run := func() {
		if len(cfg.Gaps) > 0 {
			err = sweepGaps(cfg)
		} else {
			err = solveOnce(cfg)
		}
	}
	if cfg.EnableProfiling {
		profiling.ProfileFunc("field", run)
	} else {
		run()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func solveOnce(cfg *config.Config) error {
	res, err := processing.NewFieldProcessor().Process(cfg.Field, cfg)
	if err != nil {
		return err
	}

	log.Printf("λ=%.4e m, gap=%.4e m (%.3gλ)", res.Wavelength, res.Gap, res.Gap/res.Wavelength)
	for _, r := range res.Rings {
		log.Printf("ring %d: %.4e..%.4e m, delay %.4e s", r.Index, r.Inner, r.Outer, r.Delay)
	}
	if res.Beam != nil {
		log.Printf("peak %.4e at %.4e, -3 dB width %.4e, side lobe %.2f dB",
			res.Beam.PeakValue, res.Beam.PeakPosition, res.Beam.MainLobeWidth, res.Beam.SideLobeDB)
	}
	if res.Focus != nil {
		log.Printf("focus (%s): %.4e m, |p|=%.4e", res.Focus.Method, res.Focus.Distance, res.Focus.Magnitude)
	}

	if !cfg.ImgOut {
		return nil
	}
	name := fmt.Sprintf("%d rings, gap %.3gλ", len(res.Rings), res.Gap/res.Wavelength)
	return writeChart(cfg, res.Mode, chart.FromResult(name, res))
}

func sweepGaps(cfg *config.Config) error {
	params := processing.Params(cfg.Field)
	obs, err := processing.Observation(cfg.Field)
	if err != nil {
		return err
	}
	lambda := params.Wavelength()
	gaps := make([]float64, len(cfg.Gaps))
	for i, g := range cfg.Gaps {
		gaps[i] = g * lambda
	}

	var sweep map[float64][]float64
	if cfg.Concurrency {
		sweep, err = goarraycore.RunSweepWithPool(params, gaps, cfg.Field.OuterRadius, cfg.Field.Rings, cfg.Field.Focal, obs, int(cfg.Threads))
	} else {
		sweep, err = goarraycore.SweepByGap(params, gaps, cfg.Field.OuterRadius, cfg.Field.Rings, cfg.Field.Focal, obs)
	}
	if err != nil {
		return err
	}

	axis := obs.Axis()
	for _, gap := range gaps {
		beam, err := goarraycore.AnalyzeBeam(axis, sweep[gap])
		if err != nil {
			return err
		}
		log.Printf("gap %.3gλ: peak %.4e at %.4e, -3 dB width %.4e", gap/lambda, beam.PeakValue, beam.PeakPosition, beam.MainLobeWidth)
	}

	if !cfg.ImgOut {
		return nil
	}
	series := chart.FromSweep(axis, sweep, func(gap float64) string {
		return fmt.Sprintf("gap %.3gλ", gap/lambda)
	})
	return writeChart(cfg, obs.Mode.String(), series...)
}

func writeChart(cfg *config.Config, mode string, series ...chart.Series) error {
	p, err := chart.New("Annular array field", chart.AxisLabel(mode), "|p|", series...)
	if err != nil {
		return err
	}
	size := float64(cfg.ImgSize)
	if size <= 0 {
		size = 4
	}
	return chart.WriteSVG(os.Stdout, p, size)
}
