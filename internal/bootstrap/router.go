package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/mapa-lotes/lotmap-backend/internal/api/http"
	"github.com/mapa-lotes/lotmap-backend/internal/api/http/middleware"
	authmw "github.com/mapa-lotes/lotmap-backend/internal/auth/middleware"
	"github.com/mapa-lotes/lotmap-backend/internal/catalog"
	"github.com/mapa-lotes/lotmap-backend/internal/changefeed"
	lotservice "github.com/mapa-lotes/lotmap-backend/internal/lots/service"
	projservice "github.com/mapa-lotes/lotmap-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	AuthClient  *fbauth.Client
	Cache       *catalog.Cache
	Bus         changefeed.Bus
	Lots        *lotservice.LotService
	Projects    *projservice.ProjectService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())
	api.Use(authmw.SessionMiddleware(dep.AuthClient))

	httpapi.NewCatalogHandler(dep.Cache).Register(api.Group("/catalog"))
	httpapi.NewStreamHandler(dep.Bus).Register(api.Group("/catalog"))
	httpapi.NewLotHandler(dep.Lots).Register(api.Group("/lots"))
	httpapi.NewProjectHandler(dep.Projects, dep.Lots).Register(api.Group("/projects"))

	return r
}
