package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type StepResult struct {
	Step         string        `json:"step"`
	Method       string        `json:"method"`
	Endpoint     string        `json:"endpoint"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type SmokeSuite struct {
	BaseURL string
	Client  *http.Client
	Results []StepResult
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080/api/v1", "API base URL")
	eventID := flag.String("event", "", "event to buy tickets for (first listed when empty)")
	pollFor := flag.Duration("poll", 30*time.Second, "how long to wait for the order outcome")
	flag.Parse()

	suite := &SmokeSuite{
		BaseURL: *baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}

	fmt.Println("🧪 Starting Tikiti storefront smoke test...")
	fmt.Println("===========================================")

	if err := suite.run(*eventID, *pollFor); err != nil {
		suite.generateReport()
		log.Fatalf("❌ Smoke test failed: %v", err)
	}

	suite.generateReport()
	fmt.Println("\n🎉 Smoke test complete!")
}

func (s *SmokeSuite) run(eventID string, pollFor time.Duration) error {
	var events []struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Categories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}
	if err := s.call("List events", http.MethodGet, "/events", nil, http.StatusOK, &events); err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	if eventID == "" {
		eventID = events[0].ID
	}
	var categories []string
	for _, e := range events {
		if e.ID != eventID {
			continue
		}
		fmt.Printf("   🎫 %s\n", e.Title)
		for _, c := range e.Categories {
			categories = append(categories, c.ID)
		}
	}
	if len(categories) < 2 {
		return fmt.Errorf("event %s needs at least two categories", eventID)
	}

	var selection struct {
		ID                string `json:"id"`
		GrandTotalDisplay string `json:"grand_total_display"`
	}
	if err := s.call("Start selection", http.MethodPost, "/events/"+eventID+"/selections", nil, http.StatusCreated, &selection); err != nil {
		return err
	}
	if err := s.call("Empty checkout is refused", http.MethodPost, "/selections/"+selection.ID+"/checkout", nil, http.StatusUnprocessableEntity, nil); err != nil {
		return err
	}
	if err := s.call("Select two tickets", http.MethodPut, "/selections/"+selection.ID+"/categories/"+categories[0], map[string]int{"quantity": 2}, http.StatusOK, &selection); err != nil {
		return err
	}
	if err := s.call("Add one ticket", http.MethodPost, "/selections/"+selection.ID+"/categories/"+categories[1]+"/increment", nil, http.StatusOK, &selection); err != nil {
		return err
	}
	fmt.Printf("   🧾 Total: %s\n", selection.GrandTotalDisplay)

	var checkout struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		OrderID        string `json:"order_id"`
		OrderReference string `json:"order_reference"`
		FailureReason  string `json:"failure_reason"`
	}
	if err := s.call("Hand off to checkout", http.MethodPost, "/selections/"+selection.ID+"/checkout", nil, http.StatusCreated, &checkout); err != nil {
		return err
	}

	badBilling := map[string]string{"name": "Smoke Test", "email": "smoke@example.com", "phone": "12345"}
	if err := s.call("Fill billing", http.MethodPatch, "/checkouts/"+checkout.ID+"/billing", badBilling, http.StatusOK, nil); err != nil {
		return err
	}
	if err := s.call("Invalid phone is refused", http.MethodPost, "/checkouts/"+checkout.ID+"/validate", nil, http.StatusUnprocessableEntity, nil); err != nil {
		return err
	}
	if err := s.call("Fix phone", http.MethodPatch, "/checkouts/"+checkout.ID+"/billing", map[string]string{"phone": "0712345678"}, http.StatusOK, nil); err != nil {
		return err
	}

	var submitted struct {
		Accepted bool `json:"accepted"`
	}
	if err := s.call("Submit order", http.MethodPost, "/checkouts/"+checkout.ID+"/submit", nil, http.StatusAccepted, &submitted); err != nil {
		return err
	}
	if err := s.call("Duplicate submit is dropped", http.MethodPost, "/checkouts/"+checkout.ID+"/submit", nil, http.StatusAccepted, &submitted); err != nil {
		return err
	}
	if submitted.Accepted {
		fmt.Println("   ⚠️  Second submit was accepted; the first had already finished")
	}

	deadline := time.Now().Add(pollFor)
	for {
		if err := s.call("Poll checkout", http.MethodGet, "/checkouts/"+checkout.ID, nil, http.StatusOK, &checkout); err != nil {
			return err
		}
		if checkout.Status == "completed" || checkout.Status == "failed" {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("checkout still %s after %v", checkout.Status, pollFor)
		}
		time.Sleep(500 * time.Millisecond)
	}

	if checkout.Status != "completed" {
		return fmt.Errorf("order failed: %s", checkout.FailureReason)
	}
	fmt.Printf("   ✅ Order %s completed\n", checkout.OrderReference)

	return s.call("Read back order", http.MethodGet, "/orders/"+checkout.OrderID, nil, http.StatusOK, nil)
}

// call sends one request, records the step and decodes data into out
func (s *SmokeSuite) call(step, method, endpoint string, body interface{}, wantStatus int, out interface{}) error {
	result := StepResult{Step: step, Method: method, Endpoint: endpoint}
	defer func() {
		s.Results = append(s.Results, result)
		statusIcon := "✅"
		if !result.Success {
			statusIcon = "❌"
		}
		fmt.Printf("%s %-28s %s %s [%d] %v\n", statusIcon, step, method, endpoint, result.StatusCode, result.ResponseTime)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			result.Error = err.Error()
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.BaseURL+endpoint, reader)
	if err != nil {
		result.Error = err.Error()
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.Client.Do(req)
	result.ResponseTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return err
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = err.Error()
		return err
	}

	if resp.StatusCode != wantStatus {
		result.Error = fmt.Sprintf("HTTP %d, want %d: %s", resp.StatusCode, wantStatus, raw)
		return fmt.Errorf("%s: %s", step, result.Error)
	}
	result.Success = true

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decode envelope: %w", step, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", step, err)
	}
	return nil
}

func (s *SmokeSuite) generateReport() {
	fmt.Println("\n📊 SMOKE TEST REPORT")
	fmt.Println("====================")

	successful := 0
	total := time.Duration(0)
	for _, r := range s.Results {
		if r.Success {
			successful++
		}
		total += r.ResponseTime
	}

	fmt.Printf("Steps: %d\n", len(s.Results))
	fmt.Printf("Successful: %d\n", successful)
	if len(s.Results) > 0 {
		fmt.Printf("Average Response Time: %v\n", total/time.Duration(len(s.Results)))
	}

	reportData, err := json.MarshalIndent(map[string]interface{}{
		"summary": map[string]interface{}{
			"steps":      len(s.Results),
			"successful": successful,
		},
		"results": s.Results,
	}, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile("smoke_results.json", reportData, 0o644); err != nil {
		fmt.Printf("⚠️  Could not write smoke_results.json: %v\n", err)
		return
	}
	fmt.Println("\n💾 Detailed results saved to smoke_results.json")
}
