package storefront

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIURL {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIURL)
	}
	if u.Path != apiPrefix {
		t.Fatalf("path = %q, want %q", u.Path, apiPrefix)
	}

	u, err = parseBaseURL("https://shop.example.com:1234/ignored?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != apiPrefix || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchesEndpointsAndEncodesQueries(t *testing.T) {
	t.Parallel()

	var gotProductsQuery url.Values
	var gotMessagesQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/v1/dashboard/metrics":
			_ = json.NewEncoder(w).Encode(DashboardMetrics{TotalSales: 120.5, TotalOrders: 3})
		case "/api/v1/orders/pending":
			_ = json.NewEncoder(w).Encode([]Order{{ID: "1", FulfillmentStatus: "unfulfilled"}})
		case "/api/v1/products/discover":
			gotProductsQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode([]Product{{Title: "Lamp"}, {Title: "Mug"}})
		case "/api/v1/ads/campaigns":
			_ = json.NewEncoder(w).Encode([]Campaign{{ID: "c1", Platform: "tiktok"}})
		case "/api/v1/customer/messages":
			gotMessagesQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode([]CustomerMessage{{ID: "m1", Subject: "Where is my order"}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	metrics, err := c.FetchDashboard(ctx)
	if err != nil {
		t.Fatalf("FetchDashboard returned error: %v", err)
	}
	if metrics.TotalSales != 120.5 || metrics.TotalOrders != 3 {
		t.Fatalf("FetchDashboard payload = %#v", metrics)
	}

	orders, err := c.FetchPendingOrders(ctx)
	if err != nil {
		t.Fatalf("FetchPendingOrders returned error: %v", err)
	}
	if len(orders) != 1 || !orders[0].Fulfillable() {
		t.Fatalf("FetchPendingOrders = %#v, want 1 unfulfilled order", orders)
	}

	products, err := c.DiscoverProducts(ctx, 20)
	if err != nil {
		t.Fatalf("DiscoverProducts returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("DiscoverProducts = %#v, want 2 products", products)
	}
	if gotProductsQuery.Get("limit") != "20" {
		t.Fatalf("DiscoverProducts query = %v, want limit=20", gotProductsQuery)
	}

	campaigns, err := c.FetchCampaigns(ctx)
	if err != nil {
		t.Fatalf("FetchCampaigns returned error: %v", err)
	}
	if len(campaigns) != 1 || campaigns[0].Platform != "tiktok" {
		t.Fatalf("FetchCampaigns = %#v", campaigns)
	}

	messages, err := c.FetchMessages(ctx, false)
	if err != nil {
		t.Fatalf("FetchMessages returned error: %v", err)
	}
	if len(messages) != 1 || gotMessagesQuery.Get("answered") != "false" {
		t.Fatalf("FetchMessages = %#v query = %v", messages, gotMessagesQuery)
	}

	if !strings.HasPrefix(gotUserAgent, "shopdeck/") {
		t.Fatalf("User-Agent = %q, want shopdeck/*", gotUserAgent)
	}
}

func TestClient_MutatePostsJSONAndReturnsAck(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","product":{"id":"p9"}}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ack, err := c.Mutate(context.Background(), PathAddProduct, Product{Title: "Lamp", Price: 19.99})
	if err != nil {
		t.Fatalf("Mutate returned error: %v", err)
	}
	if ack.Status != "success" {
		t.Fatalf("Ack.Status = %q, want success", ack.Status)
	}
	if !strings.Contains(string(ack.Body), `"p9"`) {
		t.Fatalf("Ack.Body = %s, want raw body", ack.Body)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/products/add" {
		t.Fatalf("request = %s %s, want POST /api/v1/products/add", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody["title"] != "Lamp" {
		t.Fatalf("body = %#v, want title Lamp", gotBody)
	}

	if _, err := c.Mutate(context.Background(), FulfillOrderPath("42"), nil); err != nil {
		t.Fatalf("Mutate(fulfill) returned error: %v", err)
	}
	if gotPath != "/api/v1/orders/42/fulfill" {
		t.Fatalf("fulfill path = %q", gotPath)
	}
	if _, err := c.Mutate(context.Background(), RespondPath("m 1"), nil); err != nil {
		t.Fatalf("Mutate(respond) returned error: %v", err)
	}
	if gotPath != "/api/v1/customer/messages/m 1/respond" {
		t.Fatalf("respond path = %q", gotPath)
	}
}

func TestClient_MutatePathsResolveUnderAPIPrefix(t *testing.T) {
	t.Parallel()

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()
	if _, err := c.Mutate(ctx, FulfillOrderPath("7"), nil); err != nil {
		t.Fatalf("Mutate(fulfill) returned error: %v", err)
	}
	if _, err := c.Mutate(ctx, RespondPath("m2"), nil); err != nil {
		t.Fatalf("Mutate(respond) returned error: %v", err)
	}
	if _, err := c.Mutate(ctx, PathAddProduct, Product{Title: "Mug"}); err != nil {
		t.Fatalf("Mutate(add product) returned error: %v", err)
	}
	if _, err := c.Mutate(ctx, PathCreateCampaign, map[string]any{"name": "Spring"}); err != nil {
		t.Fatalf("Mutate(create campaign) returned error: %v", err)
	}

	want := []string{
		"/api/v1/orders/7/fulfill",
		"/api/v1/customer/messages/m2/respond",
		"/api/v1/products/add",
		"/api/v1/ads/create",
	}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
}

func TestClient_ClassifiesFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/dashboard/metrics":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/v1/orders/1/fulfill":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"order already fulfilled"}`))
		case "/api/v1/ads/campaigns":
			http.Error(w, "upstream down", http.StatusBadGateway)
		case "/api/v1/orders/pending":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	_, err = c.FetchDashboard(ctx)
	if KindOf(err) != KindDecode || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchDashboard error = %v, want decode", err)
	}

	_, err = c.Mutate(ctx, FulfillOrderPath("1"), nil)
	if KindOf(err) != KindRejected {
		t.Fatalf("fulfill error kind = %v, want rejected", KindOf(err))
	}
	if !strings.Contains(err.Error(), "order already fulfilled") || !strings.Contains(err.Error(), "status 409") {
		t.Fatalf("fulfill error = %q, want detail and status", err.Error())
	}

	_, err = c.FetchCampaigns(ctx)
	if KindOf(err) != KindNetwork {
		t.Fatalf("FetchCampaigns error kind = %v, want network for 502", KindOf(err))
	}

	_, err = c.FetchPendingOrders(ctx)
	if KindOf(err) != KindRejected {
		t.Fatalf("FetchPendingOrders error kind = %v, want rejected for 500", KindOf(err))
	}
}

func TestClient_TimeoutResolvesAsNetwork(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	start := time.Now()
	_, err = c.FetchPendingOrders(context.Background())
	if KindOf(err) != KindNetwork {
		t.Fatalf("error = %v, want network", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not enforced; took %v", time.Since(start))
	}
}

func TestClient_UnreachableIsNetwork(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchCampaigns(context.Background()); KindOf(err) != KindNetwork {
		t.Fatalf("error = %v, want network", err)
	}
}

func TestNilClientNeverPanics(t *testing.T) {
	var c *Client
	if err := c.Fetch(context.Background(), PathCampaigns, nil, nil); KindOf(err) != KindNetwork {
		t.Fatalf("nil Fetch error = %v, want network", err)
	}
	if _, err := c.Mutate(context.Background(), PathAddProduct, nil); KindOf(err) != KindNetwork {
		t.Fatalf("nil Mutate error = %v, want network", err)
	}
}
