package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"travel-agent/internal/domain"
	"travel-agent/internal/model"
	"travel-agent/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	modelPath := flag.String("model", os.Getenv("MODEL_PATH"), "ruta al artefacto del árbol (json o yaml)")
	scenariosPath := flag.String("scenarios", "", "archivo YAML con escenarios adicionales")
	runSweep := flag.Bool("sweep", true, "evaluar el dominio completo de preferencias")
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("model path required (-model or MODEL_PATH)")
	}
	tree, err := model.Load(*modelPath)
	if err != nil {
		log.Fatal(err)
	}

	structure := tree.Structure()
	fmt.Printf("%s[Modelo]%s %s: %d features, %d nodos, profundidad %d\n",
		colorCyan, colorReset, *modelPath, len(tree.FeatureNames()), structure.NodeCount(), structure.MaxDepth())

	scenarios := defaultScenarios()
	if *scenariosPath != "" {
		doc, err := os.ReadFile(*scenariosPath)
		if err != nil {
			log.Fatal(err)
		}
		extra, err := parseScenarios(doc)
		if err != nil {
			log.Fatal(err)
		}
		scenarios = append(scenarios, extra...)
	}

	failed := 0
	for _, sc := range scenarios {
		agent, err := service.NewAgent(zap.NewNop(), tree, nil, nil, nil)
		if err != nil {
			log.Fatal(err)
		}
		res := evaluateScenario(ctx, agent, sc)
		if res.Passed() {
			fmt.Printf("%s[OK]%s %s (score %d, p=%.2f)\n", colorGreen, colorReset, sc.Name, res.Decision.Score, res.Decision.Probability)
			continue
		}
		failed++
		fmt.Printf("%s[FALLA]%s %s\n", colorRed, colorReset, sc.Name)
		if res.Err != nil {
			fmt.Printf("  error (%s): %v\n", domain.ErrorKind(res.Err), res.Err)
		}
		for _, p := range res.Problems {
			fmt.Printf("  - %s\n", p)
		}
	}

	if *runSweep {
		agent, err := service.NewAgent(zap.NewNop(), tree, service.NewMemoryDecisionStore(1), nil, nil)
		if err != nil {
			log.Fatal(err)
		}
		report := sweep(ctx, agent, domain.AllPreferences())
		fmt.Printf("\n%s[Barrido]%s %d registros, %d aceptados\n", colorCyan, colorReset, report.Total, report.Accepted)
		for _, b := range report.Buckets {
			fmt.Printf("  score %2d: %4d/%4d aceptados (%.0f%%)\n", b.Score, b.Accepted, b.Total, b.Rate()*100)
		}
		for kind, n := range report.Failures {
			failed++
			fmt.Printf("%s  errores %s: %d%s\n", colorRed, kind, n, colorReset)
		}
		if inv := inversions(report.Buckets); len(inv) > 0 {
			fmt.Printf("  aviso: la tasa de aceptación cae en scores %v\n", inv)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
