// Package http expone el libro de stock como API REST sobre Fiber.
package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias de los handlers de la API.
type RouterDeps struct {
	ArticleHandler *ArticleHandler
	LedgerHandler  *LedgerHandler
	JournalHandler *JournalHandler
	JWTSecret      string
}

// Router registra todas las rutas bajo /api. Todas exigen Bearer Token: cada
// movimiento debe quedar atribuido a un actor identificado.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	articles := api.Group("/articles")
	articles.Post("/", deps.ArticleHandler.Create)
	articles.Get("/", deps.ArticleHandler.List)
	articles.Get("/:id", deps.ArticleHandler.GetByID)
	articles.Put("/:id", deps.ArticleHandler.Update)
	articles.Post("/:id/stock", deps.LedgerHandler.InitStock)
	articles.Get("/:id/movements", deps.JournalHandler.ListByArticle)

	stock := api.Group("/stock")
	stock.Get("/", deps.LedgerHandler.List)
	stock.Get("/alerts", deps.LedgerHandler.ListAlerts)
	stock.Get("/:articleId", deps.LedgerHandler.GetSnapshot)
	stock.Post("/:articleId/movements", deps.LedgerHandler.ApplyMovement)
	stock.Post("/:articleId/reserve", deps.LedgerHandler.Reserve)
	stock.Post("/:articleId/release", deps.LedgerHandler.Release)
	stock.Post("/:articleId/reconcile", deps.LedgerHandler.Reconcile)

	api.Get("/movements", deps.JournalHandler.ListByPeriod)
}
