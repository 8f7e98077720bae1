package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgbinder/mtgbinder/internal/api/response"
	"github.com/mtgbinder/mtgbinder/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint
	s.router.Get("/ws", s.wsHub.ServeWS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Post("/auth/register", s.authHandler.Register)
		r.Post("/auth/login", s.authHandler.Login)

		// Everything else requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)

			r.Get("/auth/me", s.authHandler.Me)

			r.Route("/cards", func(r chi.Router) {
				r.Get("/search", s.cardHandler.SearchCards)
				r.Get("/named", s.cardHandler.GetCardByName)
				r.Get("/{cardID}", s.cardHandler.GetCard)
			})

			r.Route("/collection", func(r chi.Router) {
				r.Get("/", s.collectionHandler.GetCollection)
				r.Get("/value", s.collectionHandler.GetValue)
				r.Get("/export", s.collectionHandler.ExportCollection)
				r.Post("/import", s.collectionHandler.ImportCards)
				r.Put("/{cardID}", s.collectionHandler.UpdateEntry)
				r.Delete("/{cardID}", s.collectionHandler.RemoveCard)
				r.Delete("/", s.collectionHandler.ClearCollection)
			})

			r.Route("/decks", func(r chi.Router) {
				r.Get("/", s.deckHandler.GetDecks)
				r.Post("/", s.deckHandler.CreateDeck)
				r.Get("/{deckID}", s.deckHandler.GetDeck)
				r.Put("/{deckID}", s.deckHandler.UpdateDeck)
				r.Delete("/{deckID}", s.deckHandler.DeleteDeck)
				r.Post("/{deckID}/cards", s.deckHandler.AddCard)
				r.Put("/{deckID}/commander", s.deckHandler.SetCommander)
				r.Put("/{deckID}/cards/{cardID}", s.deckHandler.SetCardQuantity)
				r.Delete("/{deckID}/cards/{cardID}", s.deckHandler.RemoveCard)
				r.Get("/{deckID}/stats", s.deckHandler.GetDeckStats)
				r.Get("/{deckID}/charts", s.deckHandler.GetDeckCharts)
				r.Get("/{deckID}/export", s.deckHandler.ExportDeck)
			})

			r.Route("/trades", func(r chi.Router) {
				r.Get("/listings", s.tradeHandler.GetListings)
				r.Post("/listings", s.tradeHandler.CreateListing)
				r.Delete("/listings/{listingID}", s.tradeHandler.RemoveListing)
				r.Post("/listings/{listingID}/requests", s.tradeHandler.RequestTrade)
				r.Get("/requests", s.tradeHandler.GetRequests)
				r.Post("/requests/{requestID}/respond", s.tradeHandler.RespondToRequest)
				r.Get("/requests/{requestID}/messages", s.tradeHandler.GetMessages)
				r.Post("/requests/{requestID}/messages", s.tradeHandler.SendMessage)
			})
		})
	})
}

// healthCheck reports server liveness.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}
