package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/models"
)

// Customer is a returning customer; the phone number identifies them.
type Customer struct {
	Name  string
	Phone string
	Car   string
}

var (
	firstNames = []string{"Jane", "John", "Maria", "Ahmed", "Li", "Olivia", "Noah", "Sofia", "Kwame", "Elena"}
	lastNames  = []string{"Doe", "Smith", "Garcia", "Khan", "Wei", "Brown", "Silva", "Mensah", "Novak", "Rossi"}
	cars       = []string{"Blue Toyota Camry", "Black Ford F-150", "White Tesla Model 3", "Red Honda Civic", "Silver BMW X5", "Grey Audi A4"}
)

// basePrices are typical quotes per service; edits vary them by up to 20%.
var basePrices = map[models.Service]float64{
	models.ServiceBasic:       40,
	models.ServicePremium:     250,
	models.ServiceInterior:    120,
	models.ServiceExterior:    90,
	models.ServiceMaintenance: 150,
	models.ServiceMobile:      180,
}

var services = []models.Service{
	models.ServiceBasic, models.ServicePremium, models.ServiceInterior,
	models.ServiceExterior, models.ServiceMaintenance, models.ServiceMobile,
}

type openJob struct {
	id      string
	service models.Service
	status  models.AppointmentStatus
}

// Simulator drives the API the way the shop does during a day: customers
// submit requests and, with a staff token, jobs get priced, assigned and finished.
type Simulator struct {
	apiURL    string
	token     string
	client    *http.Client
	rng       *rand.Rand
	customers []Customer
	workers   []string
	open      []openJob
}

func newSimulator(apiURL, token string, customers int, rng *rand.Rand) *Simulator {
	return &Simulator{
		apiURL:    apiURL,
		token:     token,
		client:    &http.Client{Timeout: 10 * time.Second},
		rng:       rng,
		customers: newCustomers(customers, rng),
	}
}

func newCustomers(n int, rng *rand.Rand) []Customer {
	out := make([]Customer, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Customer{
			Name:  firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
			Phone: fmt.Sprintf("555-%04d", i+1),
			Car:   cars[rng.Intn(len(cars))],
		})
	}
	return out
}

func (s *Simulator) randomRequest() models.SubmitRequest {
	c := s.customers[s.rng.Intn(len(s.customers))]
	return models.SubmitRequest{
		Name:        c.Name,
		PhoneNumber: c.Phone,
		Service:     services[s.rng.Intn(len(services))],
		CarDetails:  c.Car,
	}
}

// quote returns a price for service rounded to cents.
func (s *Simulator) quote(service models.Service) float64 {
	base := basePrices[service]
	factor := 0.8 + s.rng.Float64()*0.4
	return math.Round(base*factor*100) / 100
}

func (s *Simulator) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// submit posts a request through the public form endpoint.
func (s *Simulator) submit(ctx context.Context, req models.SubmitRequest) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodPost, "/customer-details", req, http.StatusCreated, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("submit: response has no id")
	}
	return created.ID, nil
}

// ensureWorkers makes sure at least n workers exist and remembers their ids.
func (s *Simulator) ensureWorkers(ctx context.Context, n int) error {
	var roster []models.WorkerStats
	if err := s.do(ctx, http.MethodGet, "/workers", nil, http.StatusOK, &roster); err != nil {
		return err
	}
	s.workers = s.workers[:0]
	for _, w := range roster {
		s.workers = append(s.workers, w.ID)
	}

	for i := len(s.workers); i < n; i++ {
		var created models.Worker
		in := models.WorkerInput{
			Name:  fmt.Sprintf("Detailer %d", i+1),
			Phone: fmt.Sprintf("555-9%03d", i+1),
		}
		if err := s.do(ctx, http.MethodPost, "/workers", in, http.StatusCreated, &created); err != nil {
			return err
		}
		s.workers = append(s.workers, created.ID)
		log.WithField("worker_id", created.ID).Info("Created worker")
	}
	return nil
}

// advance moves the oldest open job one step: pending jobs are priced and
// assigned, in-progress jobs are completed.
func (s *Simulator) advance(ctx context.Context) error {
	if len(s.open) == 0 || len(s.workers) == 0 {
		return nil
	}
	job := &s.open[0]

	next := models.StatusInProgress
	if job.status == models.StatusInProgress {
		next = models.StatusCompleted
	}

	crew := 1 + s.rng.Intn(2)
	if crew > len(s.workers) {
		crew = len(s.workers)
	}
	assigned := make([]string, 0, crew)
	for _, i := range s.rng.Perm(len(s.workers))[:crew] {
		assigned = append(assigned, s.workers[i])
	}
	cost := s.quote(job.service)

	edit := models.EditRequest{Cost: &cost, Status: next, Workers: assigned}
	if err := s.do(ctx, http.MethodPut, "/appointments/"+job.id, edit, http.StatusOK, nil); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"appointment_id": job.id,
		"status":         next,
		"cost":           cost,
	}).Info("Advanced appointment")
	if next == models.StatusCompleted {
		s.open = s.open[1:]
	} else {
		job.status = next
	}
	return nil
}

// tick submits one request and, when staff actions are enabled, advances a job.
func (s *Simulator) tick(ctx context.Context) {
	req := s.randomRequest()
	id, err := s.submit(ctx, req)
	if err != nil {
		log.WithError(err).Error("Failed to submit request")
	} else {
		log.WithFields(log.Fields{"appointment_id": id, "service": req.Service}).Info("Submitted request")
		s.open = append(s.open, openJob{id: id, service: req.Service, status: models.StatusPending})
	}

	if s.token == "" {
		return
	}
	if err := s.advance(ctx); err != nil {
		log.WithError(err).Error("Failed to advance appointment")
	}
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return fallback
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	// Optional staff JWT; without it only public requests are sent.
	token := os.Getenv("SIM_AUTH_TOKEN")
	interval := time.Duration(getEnvInt("SIM_TICK_SECONDS", 5)) * time.Second
	customers := getEnvInt("SIM_CUSTOMERS", 12)
	workers := getEnvInt("SIM_WORKERS", 3)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := newSimulator(apiURL, token, customers, rand.New(rand.NewSource(time.Now().UnixNano())))
	if token != "" {
		if err := sim.ensureWorkers(ctx, workers); err != nil {
			log.WithError(err).Error("Failed to prepare workers; staff actions disabled")
			sim.token = ""
		}
	}

	log.WithFields(log.Fields{
		"api_url":       apiURL,
		"interval":      interval,
		"customers":     customers,
		"staff_actions": sim.token != "",
	}).Info("Starting shop simulation")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Simulation stopped")
			return
		case <-ticker.C:
			sim.tick(ctx)
		}
	}
}
