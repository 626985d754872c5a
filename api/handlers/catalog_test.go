package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openauto/car-market-api/api/handlers"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/databases/mocks"
	"github.com/openauto/car-market-api/models"
)

func TestCatalog_CarsEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/cars", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "cars").Return(conn)

	c := handlers.Catalog{CDB: databases.NewCarDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CarsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestCatalog_CarByIDNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/car/ghost", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"car_id": "ghost"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "cars").Return(conn)

	c := handlers.Catalog{CDB: databases.NewCarDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CarByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, errorBody("car not found", mongo.ErrNoDocuments), rr.Body.String())
}

func TestCatalog_CarByIDSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/car/car-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"car_id": "car-1"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		car := args.Get(0).(*models.Car)
		*car = models.Car{CarID: "car-1", Type: "sedan", Name: "Falcon", Model: "GT"}
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "cars").Return(conn)

	c := handlers.Catalog{CDB: databases.NewCarDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CarByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var car models.Car
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &car))
	assert.Equal(t, "Falcon", car.Name)
}

func TestCatalog_DealsByDealershipNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/deals/dealership=Ghost Motors", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"dealership_name": "Ghost Motors"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "dealerships").Return(conn)

	c := handlers.Catalog{DDB: databases.NewDealershipDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DealsByDealershipHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, errorBody("dealer not found", mongo.ErrNoDocuments), rr.Body.String())
}

func TestCatalog_DealsByDealershipSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/deals/dealership=Speedway Motors", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"dealership_name": "Speedway Motors"})

	db := &MockDatabaseHelper{}
	dealershipsConn := &mocks.CollectionHelper{}
	dealsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}
	cursor := &mocks.CursorHelper{}

	singleResultHelper.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		dealership := args.Get(0).(*models.Dealership)
		*dealership = models.Dealership{DealershipID: "dealer-1", Deals: []string{"deal-1"}}
	}).Return(nil)
	dealershipsConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		deals := args.Get(1).(*[]models.Deal)
		*deals = []models.Deal{{DealID: "deal-1", CarID: "car-1", DealInfo: models.DealInfo{Discount: "10%"}}}
	}).Return(nil)
	dealsConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	db.On("Collection", "dealerships").Return(dealershipsConn)
	db.On("Collection", "deals").Return(dealsConn)

	c := handlers.Catalog{
		DDB:    databases.NewDealershipDatabase(db),
		DealDB: databases.NewDealDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DealsByDealershipHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var deals []models.Deal
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &deals))
	assert.Len(t, deals, 1)
	assert.Equal(t, "deal-1", deals[0].DealID)
}

func TestCatalog_DealsByDealershipQuotesNameInFilter(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/deals/dealership=Speedway (Motors)", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"dealership_name": "Speedway (Motors)"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		f, ok := filter.(bson.M)
		if !ok {
			return false
		}
		re, ok := f["dealership_name"].(primitive.Regex)
		return ok && re.Pattern == regexp.QuoteMeta("Speedway (Motors)") && re.Options == "i"
	})).Return(singleResultHelper)
	db.On("Collection", "dealerships").Return(conn)

	c := handlers.Catalog{DDB: databases.NewDealershipDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DealsByDealershipHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCatalog_DealsForCarNoDeals(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/car/deals/car-9", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"car_id": "car-9"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "deals").Return(conn)

	c := handlers.Catalog{DealDB: databases.NewDealDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DealsForCarHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestCatalog_CarsByDealershipSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/cars/dealership=Speedway Motors", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"dealership_name": "Speedway Motors"})

	db := &MockDatabaseHelper{}
	dealershipsConn := &mocks.CollectionHelper{}
	carsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}
	cursor := &mocks.CursorHelper{}

	singleResultHelper.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		dealership := args.Get(0).(*models.Dealership)
		*dealership = models.Dealership{DealershipID: "dealer-1", Cars: []string{"car-1"}}
	}).Return(nil)
	dealershipsConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		cars := args.Get(1).(*[]models.Car)
		*cars = []models.Car{{CarID: "car-1", Name: "Falcon"}}
	}).Return(nil)
	carsConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	db.On("Collection", "dealerships").Return(dealershipsConn)
	db.On("Collection", "cars").Return(carsConn)

	c := handlers.Catalog{
		CDB: databases.NewCarDatabase(db),
		DDB: databases.NewDealershipDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CarsByDealershipHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var cars []models.Car
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cars))
	assert.Len(t, cars, 1)
	assert.Equal(t, "car-1", cars[0].CarID)
}
