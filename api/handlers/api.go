package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/openauto/car-market-api/api"
	"github.com/openauto/car-market-api/api/scheduler"
	"github.com/openauto/car-market-api/auth"
	"github.com/openauto/car-market-api/config"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/models"
)

// App stores the router and db connection for the application
type App struct {
	Router *mux.Router
	Config config.Config
	Auth   *auth.Service

	dbHelper databases.DatabaseHelper
	rec      *scheduler.Reconciler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	m := api.Middleware{Auth: a.Auth}

	admin := Admin{DB: databases.NewAdminDatabase(a.dbHelper), Auth: a.Auth, Rec: a.rec}
	user := User{
		DB:   databases.NewUserDatabase(a.dbHelper),
		SVDB: databases.NewSoldVehicleDatabase(a.dbHelper),
		CDB:  databases.NewCarDatabase(a.dbHelper),
		Auth: a.Auth,
	}
	dealership := Dealership{
		DB:     databases.NewDealershipDatabase(a.dbHelper),
		CDB:    databases.NewCarDatabase(a.dbHelper),
		DealDB: databases.NewDealDatabase(a.dbHelper),
		Auth:   a.Auth,
	}
	sale := Sale{
		UDB:  databases.NewUserDatabase(a.dbHelper),
		DDB:  databases.NewDealershipDatabase(a.dbHelper),
		CDB:  databases.NewCarDatabase(a.dbHelper),
		SVDB: databases.NewSoldVehicleDatabase(a.dbHelper),
	}
	catalog := Catalog{
		CDB:    databases.NewCarDatabase(a.dbHelper),
		DDB:    databases.NewDealershipDatabase(a.dbHelper),
		DealDB: databases.NewDealDatabase(a.dbHelper),
	}

	r.HandleFunc("/health", healthCheckHandler)

	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/admin/register", admin.AdminRegisterHandler).Methods("POST")
	apiRouter.HandleFunc("/admin/login", admin.AdminLoginHandler).Methods("POST")
	apiRouter.HandleFunc("/admin/validate-token", admin.AdminValidateTokenHandler).Methods("POST")
	apiRouter.Handle("/admin/sales-report",
		m.Authenticate(auth.KindAdmin)(http.HandlerFunc(admin.SalesReportHandler))).Methods("GET")

	apiRouter.HandleFunc("/user/register", user.UserRegisterHandler).Methods("POST")
	apiRouter.HandleFunc("/user/login", user.UserLoginHandler).Methods("POST")
	apiRouter.HandleFunc("/user/validate-token", user.UserValidateTokenHandler).Methods("POST")
	apiRouter.Handle("/user/buy-car",
		m.Authenticate(auth.KindUser)(http.HandlerFunc(sale.SellCarHandler))).Methods("POST")
	apiRouter.HandleFunc("/user/my-vehicles", user.MyVehiclesHandler).Methods("GET")
	apiRouter.HandleFunc("/user/my-vehicle/{car_id}", user.MyVehicleHandler).Methods("GET")

	apiRouter.HandleFunc("/dealership/register", dealership.DealershipRegisterHandler).Methods("POST")
	apiRouter.HandleFunc("/dealership/login", dealership.DealershipLoginHandler).Methods("POST")
	apiRouter.HandleFunc("/dealership/validate-token", dealership.DealershipValidateTokenHandler).Methods("POST")
	apiRouter.Handle("/dealership/sell-car",
		m.Authenticate(auth.KindDealership)(http.HandlerFunc(sale.SellCarHandler))).Methods("POST")
	apiRouter.HandleFunc("/dealership/vehicles-for-sale/{dealership_id}", dealership.VehiclesForSaleHandler).Methods("GET")
	apiRouter.HandleFunc("/dealership/vehicle-for-sale/{dealership_id}/{car_id}", dealership.VehicleForSaleHandler).Methods("GET")
	apiRouter.Handle("/dealership/add-car",
		m.Authenticate(auth.KindDealership)(http.HandlerFunc(dealership.AddCarHandler))).Methods("POST")
	apiRouter.Handle("/dealership/deals/dealership={dealership_name}",
		m.Authenticate(auth.KindDealership)(http.HandlerFunc(dealership.PostDealHandler))).Methods("POST")

	apiRouter.HandleFunc("/cars", catalog.CarsHandler).Methods("GET")
	apiRouter.HandleFunc("/cars/dealership={dealership_name}", catalog.CarsByDealershipHandler).Methods("GET")
	apiRouter.HandleFunc("/car/{car_id}", catalog.CarByIDHandler).Methods("GET")
	apiRouter.HandleFunc("/car/deals/{car_id}", catalog.DealsForCarHandler).Methods("GET")
	apiRouter.HandleFunc("/deals", catalog.DealsHandler).Methods("GET")
	apiRouter.HandleFunc("/deals/dealership={dealership_name}", catalog.DealsByDealershipHandler).Methods("GET")

	apiRouter.HandleFunc("/auth/logout", m.RevokeToken).Methods("DELETE")

	return r
}

// Initialize connects mongo, builds the auth service and reconciler, and
// wires the routes. It must run before the app serves traffic.
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		return err
	}
	a.dbHelper = databases.NewDatabase(&a.Config, client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		return err
	}

	if a.Config.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	a.Auth = auth.NewService(a.Config.JWTSecret)

	a.rec = scheduler.NewReconciler(
		databases.NewUserDatabase(a.dbHelper),
		databases.NewDealershipDatabase(a.dbHelper),
		databases.NewSoldVehicleDatabase(a.dbHelper),
	)
	if err := a.rec.Start(); err != nil {
		return err
	}

	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// healthCheckHandler will return the current health of the api
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.HealthCheckResponse{Alive: true})
}
