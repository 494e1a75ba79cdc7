// Command simulator drives a running garage-hub API with a stream of
// walk-in and phone bookings, moving some of them through the workshop.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var errUnexpectedStatus = errors.New("unexpected status")

// Booking is the subset of the booking resource the simulator reads back.
type Booking struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ServiceType   string `json:"service_type"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

type bookingRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	VehicleRego   string  `json:"vehicle_rego"`
	VehicleMake   string  `json:"vehicle_make"`
	VehicleModel  string  `json:"vehicle_model"`
	VehicleYear   int     `json:"vehicle_year"`
	ServiceType   string  `json:"service_type"`
	ServiceName   string  `json:"service_name"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time"`
	Duration      int     `json:"duration"`
	Source        string  `json:"source"`
	EstimatedCost float64 `json:"estimated_cost"`
}

type lineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type invoiceRequest struct {
	BookingID    string     `json:"booking_id"`
	CustomerName string     `json:"customer_name"`
	VehicleRego  string     `json:"vehicle_rego"`
	Services     []lineItem `json:"services"`
	LabourCharge float64    `json:"labour_charge,omitempty"`
}

type serviceOffer struct {
	Type     string
	Name     string
	Duration int
	Price    float64
}

var offers = []serviceOffer{
	{Type: "wof", Name: "WOF Inspection", Duration: 30, Price: 65},
	{Type: "service", Name: "Full Service", Duration: 120, Price: 280},
	{Type: "repair", Name: "Brake Pad Replacement", Duration: 90, Price: 220},
	{Type: "diagnostic", Name: "Engine Diagnostic", Duration: 60, Price: 120},
	{Type: "maintenance", Name: "Oil Change", Duration: 45, Price: 95},
}

var customers = []string{"Aroha Ngata", "James Lee", "Priya Patel", "Tom Brown", "Mele Tonga", "Sophie Martin"}

var vehicles = []struct {
	Make  string
	Model string
}{
	{"Toyota", "Corolla"}, {"Mazda", "Demio"}, {"Ford", "Ranger"}, {"Nissan", "Leaf"}, {"Suzuki", "Swift"},
}

const labourRate = 95.0

var slotTimes = []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// Client talks to the garage-hub API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	token   string
}

// NewClient creates a client for the API rooted at baseURL (e.g. http://localhost:8080/api).
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) do(method, path string, body interface{}, want int, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %w %d: %s", method, path, errUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/auth/login",
		map[string]string{"username": username, "password": password}, http.StatusOK, &resp)
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("login returned no token")
	}
	c.token = resp.Token
	return nil
}

// CreateBooking posts a new booking.
func (c *Client) CreateBooking(req bookingRequest) (*Booking, error) {
	var b Booking
	if err := c.do(http.MethodPost, "/bookings", req, http.StatusCreated, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Arrive marks the customer as arrived, starting the job.
func (c *Client) Arrive(id string) error {
	return c.do(http.MethodPost, "/bookings/"+id+"/arrival", map[string]bool{"arrived": true}, http.StatusOK, nil)
}

// Complete finishes the job at the given cost.
func (c *Client) Complete(id string, cost float64) error {
	return c.do(http.MethodPost, "/bookings/"+id+"/complete", map[string]float64{"actual_cost": cost}, http.StatusOK, nil)
}

// Invoice raises an invoice for a completed booking.
func (c *Client) Invoice(req invoiceRequest) error {
	return c.do(http.MethodPost, "/invoices", req, http.StatusCreated, nil)
}

// Simulator generates workshop traffic.
type Simulator struct {
	client *Client
	rng    *rand.Rand
	now    func() time.Time
	// CompleteRatio is the share of new bookings taken straight through
	// to an invoice.
	CompleteRatio float64
}

// NewSimulator creates a simulator using client.
func NewSimulator(client *Client, seed int64) *Simulator {
	return &Simulator{
		client:        client,
		rng:           rand.New(rand.NewSource(seed)),
		now:           time.Now,
		CompleteRatio: 0.3,
	}
}

func (s *Simulator) randomRego() string {
	const letters = "ABCDEFGHJKLMNPRSTUVWXYZ"
	b := make([]byte, 0, 6)
	for i := 0; i < 3; i++ {
		b = append(b, letters[s.rng.Intn(len(letters))])
	}
	return string(b) + strconv.Itoa(100+s.rng.Intn(900))
}

func (s *Simulator) randomBooking() (bookingRequest, serviceOffer) {
	offer := offers[s.rng.Intn(len(offers))]
	v := vehicles[s.rng.Intn(len(vehicles))]
	source := "phone"
	if s.rng.Intn(2) == 0 {
		source = "walk-in"
	}
	day := s.now().AddDate(0, 0, s.rng.Intn(7))

	return bookingRequest{
		CustomerName:  customers[s.rng.Intn(len(customers))],
		CustomerPhone: fmt.Sprintf("021 %03d %04d", s.rng.Intn(1000), s.rng.Intn(10000)),
		VehicleRego:   s.randomRego(),
		VehicleMake:   v.Make,
		VehicleModel:  v.Model,
		VehicleYear:   2008 + s.rng.Intn(16),
		ServiceType:   offer.Type,
		ServiceName:   offer.Name,
		ScheduledDate: day.Format("2006-01-02"),
		ScheduledTime: slotTimes[s.rng.Intn(len(slotTimes))],
		Duration:      offer.Duration,
		Source:        source,
		EstimatedCost: offer.Price,
	}, offer
}

// job is one generated booking and what to do with it.
type job struct {
	req      bookingRequest
	offer    serviceOffer
	complete bool
}

func (s *Simulator) nextJob() job {
	req, offer := s.randomBooking()
	return job{req: req, offer: offer, complete: s.rng.Float64() < s.CompleteRatio}
}

// Step creates one booking and, for a share of them, works it through
// arrival, completion and invoicing.
func (s *Simulator) Step() error {
	return s.process(s.nextJob())
}

func (s *Simulator) process(j job) error {
	b, err := s.client.CreateBooking(j.req)
	if err != nil {
		return err
	}
	entry := log.WithFields(log.Fields{
		"booking_id": b.ID,
		"service":    j.offer.Type,
		"date":       j.req.ScheduledDate,
		"time":       j.req.ScheduledTime,
	})
	entry.Info("Created booking")

	if !j.complete {
		return nil
	}
	if err := s.client.Arrive(b.ID); err != nil {
		return err
	}
	if err := s.client.Complete(b.ID, j.offer.Price); err != nil {
		return err
	}
	inv := invoiceRequest{
		BookingID:    b.ID,
		CustomerName: j.req.CustomerName,
		VehicleRego:  j.req.VehicleRego,
		Services:     []lineItem{{Name: j.offer.Name, Price: j.offer.Price, Quantity: 1}},
	}
	if j.offer.Duration > 60 {
		inv.LabourCharge = labourRate * float64(j.offer.Duration/60)
	}
	if err := s.client.Invoice(inv); err != nil {
		return err
	}
	entry.Info("Completed and invoiced booking")
	return nil
}

// Run starts a job every interval, with at most workers in flight, until
// count jobs were started or ctx is done. A count of zero runs until ctx
// is done. Failed jobs are logged and do not stop the run.
func (s *Simulator) Run(ctx context.Context, count, workers int, interval time.Duration) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for i := 0; count == 0 || i < count; i++ {
		j := s.nextJob()
		g.Go(func() error {
			if err := s.process(j); err != nil {
				log.WithError(err).Error("Simulation step failed")
			}
			return nil
		})
		if count != 0 && i == count-1 {
			break
		}
		select {
		case <-ctx.Done():
			return g.Wait()
		case <-tick.C:
		}
	}
	return g.Wait()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.WithField(key, v).Warn("Invalid integer, using default")
	}
	return fallback
}

func main() {
	apiURL := getEnv("API_BASE_URL", "http://localhost:8080/api")
	username := getEnv("SIM_USERNAME", "admin")
	password := os.Getenv("SIM_PASSWORD")
	count := getInt("SIM_BOOKINGS", 20)
	workers := getInt("SIM_WORKERS", 4)
	interval := time.Duration(getInt("SIM_TICK_SECONDS", 2)) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	log.WithFields(log.Fields{
		"api_url":  apiURL,
		"bookings": count,
		"workers":  workers,
		"interval": interval,
	}).Info("Starting workshop simulation")

	client := NewClient(apiURL)
	if err := client.Login(username, password); err != nil {
		log.WithError(err).Fatal("Login failed. Set SIM_USERNAME and SIM_PASSWORD to a staff account")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewSimulator(client, time.Now().UnixNano()).Run(ctx, count, workers, interval); err != nil {
		log.WithError(err).Error("Workshop simulation stopped")
		return
	}
	log.Info("Workshop simulation finished")
}
