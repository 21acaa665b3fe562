package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"travel-agent/internal/config"
	"travel-agent/internal/destination"
	"travel-agent/internal/domain"
	"travel-agent/internal/model"
	"travel-agent/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	tree, err := model.Load(cfg.ModelPath)
	if err != nil {
		log.Fatalf("cargar modelo: %v", err)
	}

	var policy service.Policy = service.NoopPolicy{}
	if cfg.PolicyEnabled {
		policy = service.NewBudgetPolicy()
	}

	memory := service.NewMemoryDecisionStore(cfg.MemoryMaxEntries)
	agent, err := service.NewAgent(logger, tree, memory, policy, nil)
	if err != nil {
		log.Fatalf("crear agente: %v", err)
	}

	destClient := destination.NewHTTPClient(cfg.GeocoderBaseURL, cfg.OverpassURL, cfg.UserAgent, cfg.DestinationRadiusM, logger)
	alternativesSvc := service.NewAlternativesService(destClient, logger)

	var last *domain.Decision
	var lastPrefs domain.Preferences

	for {
		fmt.Println("\n===== Agente de Viajes =====")
		fmt.Println("[1] Evaluar oferta")
		fmt.Println("[2] Evaluar oferta desde una ciudad")
		fmt.Println("[3] Ver historial")
		fmt.Println("[4] Ver insights")
		fmt.Println("[5] Buscar destinos alternativos")
		fmt.Println("[6] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, _ := reader.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "1":
			raw := readOfferFlow(reader, nil)
			if d, prefs, ok := decideFlow(ctx, agent, raw); ok {
				last, lastPrefs = &d, prefs
			}
		case "2":
			attrs, err := cityLookupFlow(ctx, reader, destClient)
			if err != nil {
				fmt.Printf("Error consultando ciudad: %v\n", err)
				continue
			}
			raw := readOfferFlow(reader, &attrs)
			if d, prefs, ok := decideFlow(ctx, agent, raw); ok {
				last, lastPrefs = &d, prefs
			}
		case "3":
			printHistory(ctx, memory)
		case "4":
			printInsights(ctx, agent)
		case "5":
			if last == nil {
				fmt.Println("Primero evalua una oferta.")
				continue
			}
			alternativesFlow(ctx, reader, alternativesSvc, lastPrefs, last.Score)
		case "6":
			os.Exit(0)
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

// readOfferFlow pide los campos de la oferta; attrs precarga calidad y actividades.
func readOfferFlow(reader *bufio.Reader, attrs *destination.Attributes) domain.RawPreferences {
	raw := domain.RawPreferences{}
	raw[domain.FieldTravelComfort] = readLine(reader, "Comodidad del viaje (1-5): ")
	if attrs != nil {
		raw[domain.FieldAttractionsQuality] = attrs.AttractionsQuality
		raw[domain.FieldActivitiesMatch] = attrs.ActivitiesMatch
		fmt.Printf("Atracciones: %d (calidad %d, actividades %d)\n", attrs.TotalAttractions, attrs.AttractionsQuality, attrs.ActivitiesMatch)
	} else {
		raw[domain.FieldAttractionsQuality] = readLine(reader, "Calidad de atracciones (1-5): ")
		raw[domain.FieldActivitiesMatch] = readLine(reader, "Coincidencia de actividades (0-2): ")
	}
	season := readLine(reader, "Temporada adecuada? [s/n]: ")
	raw[domain.FieldSeasonMatch] = strings.EqualFold(season, "s") || strings.EqualFold(season, "si")
	raw[domain.FieldUserBudget] = readLine(reader, "Presupuesto (low/medium/high): ")
	raw[domain.FieldTripCost] = readLine(reader, "Costo del viaje (low/medium/high): ")
	return raw
}

func decideFlow(ctx context.Context, agent *service.Agent, raw domain.RawPreferences) (domain.Decision, domain.Preferences, bool) {
	prefs, err := domain.ParsePreferences(raw)
	if err != nil {
		fmt.Printf("Entrada invalida: %v\n", err)
		return domain.Decision{}, domain.Preferences{}, false
	}
	d, err := agent.Decide(ctx, prefs)
	if err != nil {
		fmt.Printf("Error evaluando oferta: %v\n", err)
		return domain.Decision{}, domain.Preferences{}, false
	}

	verdict := "RECHAZADA"
	if d.Accepted {
		verdict = "ACEPTADA"
	}
	fmt.Printf("\nOferta %s (score %d/10, p=%.2f, confianza %.2f)\n", verdict, d.Score, d.Probability, d.Confidence)
	fmt.Println(d.Explanation)
	fmt.Println("Camino de decision:")
	fmt.Println(service.FormatPathStatus(d.DecisionPath))
	if len(d.RecommendedChanges) > 0 {
		fmt.Println("Recomendaciones:")
		for _, r := range d.RecommendedChanges {
			fmt.Printf("  - %s\n", r)
		}
	}
	return d, prefs, true
}

func cityLookupFlow(ctx context.Context, reader *bufio.Reader, client destination.Client) (destination.Attributes, error) {
	city := readLine(reader, "Ciudad destino: ")
	if city == "" {
		return destination.Attributes{}, fmt.Errorf("ciudad vacia")
	}
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	return client.Lookup(ctx, city)
}

func alternativesFlow(ctx context.Context, reader *bufio.Reader, svc *service.AlternativesService, base domain.Preferences, score int) {
	input := readLine(reader, "Ciudades separadas por coma (vacio = lista por defecto): ")
	var cities []string
	for _, c := range strings.Split(input, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	limit := readIntDefault(reader, "Cantidad maxima (default 3): ", 0)

	fmt.Println("Consultando destinos...")
	alts, err := svc.Rank(ctx, base, score, cities, limit)
	if err != nil {
		fmt.Printf("Error buscando alternativas: %v\n", err)
		return
	}
	if len(alts) == 0 {
		fmt.Println("No se encontraron destinos con mejor score.")
		return
	}
	for i, a := range alts {
		fmt.Printf("[%d] %s score %d (calidad %d, actividades %d, %d atracciones)\n",
			i+1, a.City, a.Score, a.AttractionsQuality, a.ActivitiesMatch, a.TotalAttractions)
	}
}

func printHistory(ctx context.Context, memory service.DecisionMemory) {
	entries, err := memory.History(ctx)
	if err != nil {
		fmt.Printf("Error leyendo historial: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("Historial vacio.")
		return
	}
	for i, e := range entries {
		status := "rechazada"
		if e.Decision.Accepted {
			status = "aceptada"
		}
		fmt.Printf("[%d] %s score=%d presupuesto=%s costo=%s\n", i+1, status, e.Decision.Score, e.Preferences.UserBudget, e.Preferences.TripCost)
	}
}

func printInsights(ctx context.Context, agent *service.Agent) {
	insights, err := agent.Insights(ctx)
	if err != nil {
		fmt.Printf("Error calculando insights: %v\n", err)
		return
	}
	fmt.Printf("Total: %d, rechazadas: %d\n", insights.Total, insights.Rejected)
	if insights.MostCommonReason != "" {
		fmt.Printf("Motivo mas comun: %s (%d veces)\n", insights.MostCommonReason, insights.MostCommonReasonHits)
	}
	if len(insights.RejectedBudgetLevels) > 0 {
		fmt.Printf("Presupuestos rechazados: %v\n", insights.RejectedBudgetLevels)
	}
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readIntDefault(reader *bufio.Reader, prompt string, def int) int {
	text := readLine(reader, prompt)
	if text == "" {
		return def
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return def
	}
	return v
}
