// Package main provides the densenet CLI.
//
// Usage:
//
//	densenet train -data mnist_train.csv -config hyper.yaml -out model.dnet
//	densenet train -synthetic 500 -worker
//	densenet predict -model model.dnet -data mnist_test.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/born-ml/densenet/internal/config"
	"github.com/born-ml/densenet/internal/mnist"
	"github.com/born-ml/densenet/internal/model"
	"github.com/born-ml/densenet/internal/parallel"
	"github.com/born-ml/densenet/internal/store"
	"github.com/born-ml/densenet/internal/worker"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("densenet %s\n", version)
	case "train":
		train(os.Args[2:])
	case "predict":
		predict(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("densenet - dense neural networks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  train      Train a classifier on MNIST-style data")
	fmt.Println("  predict    Score a saved model on MNIST-style data")
}

// dataFlags are the dataset options shared by train and predict.
type dataFlags struct {
	csv       string
	images    string
	labels    string
	synthetic int
	samples   int
}

func (d *dataFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.csv, "data", "", "CSV file of label,px0..px783 rows")
	fs.StringVar(&d.images, "images", "", "IDX image file (used with -labels)")
	fs.StringVar(&d.labels, "labels", "", "IDX label file (used with -images)")
	fs.IntVar(&d.synthetic, "synthetic", 0, "generate n synthetic rows instead of reading a file")
	fs.IntVar(&d.samples, "samples", 0, "maximum number of rows to use (0 = all)")
}

func (d *dataFlags) load() ([][]float64, error) {
	switch {
	case d.csv != "":
		return mnist.LoadCSV(d.csv, mnist.Options{MaxSamples: d.samples, Parallel: parallel.DefaultConfig()})
	case d.images != "" && d.labels != "":
		return mnist.LoadIDX(d.images, d.labels, d.samples)
	case d.synthetic > 0:
		return mnist.Synthetic(d.synthetic), nil
	default:
		return nil, errors.New("no dataset: set -data, -images and -labels, or -synthetic")
	}
}

func train(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var data dataFlags
	data.register(fs)
	configPath := fs.String("config", "", "YAML hyperparameter file (defaults when empty)")
	out := fs.String("out", "model.dnet", "snapshot file to write")
	onWorker := fs.Bool("worker", false, "train on a background worker")
	epochs := fs.Int("epochs", 0, "override the configured number of epochs")
	_ = fs.Parse(args)

	hyper := config.Default()
	if *configPath != "" {
		var err error
		if hyper, err = config.LoadFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *epochs > 0 {
		hyper.Epochs = *epochs
	}

	rows, err := data.load()
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	mnist.Shuffle(rows, hyper.Seed)
	x, y, err := mnist.Split(rows, mnist.Classes, parallel.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to prepare dataset: %v", err)
	}
	if len(x) == 0 {
		log.Fatalf("Dataset is empty")
	}
	fmt.Printf("Loaded %d samples\n", len(x))

	m, err := hyper.Build(len(x[0]), mnist.Classes)
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}

	cfg := hyper.TrainConfig()
	cfg.BatchSize = min(cfg.BatchSize, len(x))
	total := cfg.StepsPerEpoch(len(x)) * cfg.Epochs
	cfg.OnTrainingStep = func(r model.StepReport) {
		fmt.Printf("epoch %d/%d %s loss %.4f\n",
			r.Epoch+1, r.TotalEpochs, model.ProgressBar(30, r.Step+1, total), r.Loss)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *onWorker {
		err = worker.Train(ctx, m, cfg, x, y)
	} else {
		err = m.TrainContext(ctx, cfg, x, y)
	}
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	fmt.Printf("Training accuracy: %.2f%%\n", accuracy(m, x, y)*100)

	snap := store.FromModel(m, &hyper)
	snap.Metadata = map[string]string{"samples": fmt.Sprint(len(x))}
	if err := store.Save(*out, snap); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}
	fmt.Printf("Saved model to %s\n", *out)
}

func predict(args []string) {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	var data dataFlags
	data.register(fs)
	path := fs.String("model", "model.dnet", "snapshot file to load")
	show := fs.Int("show", 5, "number of individual predictions to print")
	_ = fs.Parse(args)

	snap, err := store.Load(*path)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	m, err := snap.Model()
	if err != nil {
		log.Fatalf("Failed to restore model: %v", err)
	}

	rows, err := data.load()
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	x, y, err := mnist.Split(rows, mnist.Classes, parallel.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to prepare dataset: %v", err)
	}

	for i := 0; i < min(*show, len(x)); i++ {
		p, err := m.Predict(x[i])
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}
		fmt.Printf("sample %d: label %d, predicted %d (%d%%)\n", i, label(y[i]), p.Class, p.Percent())
	}
	fmt.Printf("Accuracy: %.2f%% over %d samples\n", accuracy(m, x, y)*100, len(x))
}

func accuracy(m *model.Model, x, y [][]float64) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i := range x {
		p, err := m.Predict(x[i])
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}
		if p.Class == label(y[i]) {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}

// label returns the index of the hot entry of a one-hot row.
func label(oneHot []float64) int {
	for i, v := range oneHot {
		if v == 1 {
			return i
		}
	}
	return -1
}
