package internal

import (
	"net/http"
	"readtrack/internal/controllers"
	"readtrack/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/history", http.HandlerFunc(apiController.GetHistory))
	routers.Get("/history/report", http.HandlerFunc(apiController.GetReport))

	routers.Post("/detect", http.HandlerFunc(apiController.Detect))
	routers.Post("/migrate", http.HandlerFunc(apiController.Migrate))
	routers.Post("/import", http.HandlerFunc(apiController.Import))
	routers.Post("/validate", http.HandlerFunc(apiController.Validate))
	routers.Post("/autofix", http.HandlerFunc(apiController.AutoFix))
	routers.Post("/bulk", http.HandlerFunc(apiController.Bulk))

	routers.Post("/day", http.HandlerFunc(apiController.AddDay))
	routers.Put("/day", http.HandlerFunc(apiController.UpdateDay))
	routers.Delete("/day", http.HandlerFunc(apiController.RemoveDay))
	return routers
}
