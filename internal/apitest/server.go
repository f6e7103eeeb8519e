// Package apitest is an in-memory stand-in for the burger backend's REST API.
// It is served through an http.RoundTripper, so tests never open a socket.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/poku-e/kitchen/internal/model"
)

// BaseURL is a placeholder host; requests never leave the process.
const BaseURL = "http://burger-backend.test"

// Request records one call received by the fake.
type Request struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

type failure struct {
	method string
	status int
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	app *fiber.App

	mu       sync.Mutex
	recipes  []model.Recipe
	stock    []model.StockItem
	nextID   int
	requests []Request
	failures []failure
	pages    map[string]string
}

func New() *Server {
	s := &Server{}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(s.record)

	api := app.Group("/api")
	api.Get("/recipes", s.listRecipes)
	api.Post("/recipes", s.createRecipe)
	api.Patch("/recipes/:id", s.updateRecipe)
	api.Delete("/recipes/:id", s.deleteRecipe)

	api.Get("/inventory", s.listStock)
	api.Post("/inventory", s.createStock)
	api.Patch("/inventory/:id", s.patchStock)
	api.Delete("/inventory/:id", s.deleteStock)

	app.Get("/pages/:name", s.page)

	s.app = app
	return s
}

// RoundTrip makes the fake usable as an http.Client transport.
func (s *Server) RoundTrip(req *http.Request) (*http.Response, error) {
	return s.app.Test(req, -1)
}

// Client returns an http.Client wired to the fake.
func (s *Server) Client() *http.Client {
	return &http.Client{Transport: s}
}

// FailNext makes the next request with the given method answer with status.
// Failures queue up in the order they are registered.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, status: status})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts received requests matching method (any when empty).
func (s *Server) CountRequests(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if method == "" || r.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) SeedRecipes(recipes ...model.Recipe) []model.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recipes {
		r.ID = s.newID()
		s.recipes = append(s.recipes, r)
	}
	return append([]model.Recipe(nil), s.recipes...)
}

// SeedStock stores items as given; totals are not recomputed.
func (s *Server) SeedStock(items ...model.StockItem) []model.StockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		it.ID = s.newID()
		s.stock = append(s.stock, it)
	}
	return append([]model.StockItem(nil), s.stock...)
}

func (s *Server) Recipes() []model.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

func (s *Server) Stock() []model.StockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StockItem, len(s.stock))
	copy(out, s.stock)
	return out
}

// newID mimics a 24-hex-digit document id. Caller holds mu.
func (s *Server) newID() string {
	s.nextID++
	return fmt.Sprintf("%024x", s.nextID)
}

// SetPage serves html at /pages/<name>, for scraping a published stock page.
func (s *Server) SetPage(name, html string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages == nil {
		s.pages = map[string]string{}
	}
	s.pages[name] = html
	return BaseURL + "/pages/" + name
}

func (s *Server) page(c *fiber.Ctx) error {
	s.mu.Lock()
	html, ok := s.pages[c.Params("name")]
	s.mu.Unlock()
	if !ok {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// ---------- Middleware ----------

func (s *Server) record(c *fiber.Ctx) error {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:    strings.Clone(c.Method()),
		Path:      strings.Clone(c.Path()),
		Body:      string(c.Body()),
		RequestID: strings.Clone(c.Get("X-Request-ID")),
	})
	var fail *failure
	for i, f := range s.failures {
		if f.method == c.Method() {
			fail = &f
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if fail != nil {
		return fiber.NewError(fail.status, "injected failure")
	}
	return c.Next()
}

// ---------- Recipes ----------

func (s *Server) listRecipes(c *fiber.Ctx) error {
	return c.JSON(s.Recipes())
}

func (s *Server) createRecipe(c *fiber.Ctx) error {
	var r model.Recipe
	if err := json.Unmarshal(c.Body(), &r); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if r.Ingredients == nil {
		r.Ingredients = []model.Ingredient{}
	}
	s.mu.Lock()
	r.ID = s.newID()
	s.recipes = append(s.recipes, r)
	s.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (s *Server) updateRecipe(c *fiber.Ctx) error {
	var r model.Recipe
	if err := json.Unmarshal(c.Body(), &r); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	id := strings.Clone(c.Params("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			r.ID = s.recipes[i].ID
			s.recipes[i] = r
			return c.JSON(r)
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "recipe not found")
}

func (s *Server) deleteRecipe(c *fiber.Ctx) error {
	id := strings.Clone(c.Params("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "recipe not found")
}

// ---------- Inventory ----------

func (s *Server) listStock(c *fiber.Ctx) error {
	return c.JSON(s.Stock())
}

func (s *Server) createStock(c *fiber.Ctx) error {
	var it model.StockItem
	if err := json.Unmarshal(c.Body(), &it); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	s.mu.Lock()
	it.ID = s.newID()
	s.stock = append(s.stock, it)
	s.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(it)
}

// patchStock accepts either a full item or {"action":"decrement","amount":N}.
// The decrement keeps totalCost in step with the new quantity.
func (s *Server) patchStock(c *fiber.Ctx) error {
	var probe struct {
		Action string `json:"action"`
		Amount *int64 `json:"amount"`
	}
	if err := json.Unmarshal(c.Body(), &probe); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	id := strings.Clone(c.Params("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.stock {
		if s.stock[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fiber.NewError(fiber.StatusNotFound, "item not found")
	}

	switch probe.Action {
	case "":
		var it model.StockItem
		if err := json.Unmarshal(c.Body(), &it); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid json")
		}
		it.ID = id
		s.stock[idx] = it
	case model.ActionDecrement:
		if probe.Amount == nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount required")
		}
		it := s.stock[idx]
		it.Quantity = it.Quantity.Sub(decimal.NewFromInt(*probe.Amount))
		s.stock[idx] = it.WithTotal()
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown action")
	}
	return c.JSON(s.stock[idx])
}

func (s *Server) deleteStock(c *fiber.Ctx) error {
	id := strings.Clone(c.Params("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stock {
		if s.stock[i].ID == id {
			s.stock = append(s.stock[:i], s.stock[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "item not found")
}
