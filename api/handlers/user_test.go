package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/openauto/car-market-api/api/handlers"
	"github.com/openauto/car-market-api/auth"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/databases/mocks"
	"github.com/openauto/car-market-api/models"
)

type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

func errorBody(message string, err error) string {
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{
		Message: message,
		Error:   err.Error(),
	}})
	return string(b)
}

func TestUser_RegisterConflict(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"user_email":    "alice@example.com",
		"user_password": "password123",
	})
	req, err := http.NewRequest("POST", "/api/user/register", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserRegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, errorBody("user already exists", handlers.ErrEmailTaken), rr.Body.String())
}

func TestUser_RegisterSuccess(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"user_email":    "alice@example.com",
		"user_location": "Springfield",
		"user_password": "password123",
		"user_info":     map[string]interface{}{"name": "Alice", "age": 30},
	})
	req, err := http.NewRequest("POST", "/api/user/register", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc interface{}) bool {
		user, ok := doc.(models.User)
		return ok && user.UserEmail == "alice@example.com" &&
			user.VehicleInfo != nil && len(user.VehicleInfo) == 0 &&
			user.PasswordHash != "password123"
	})).Return("mocked-id", nil)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserRegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user registered successfully", resp["message"])
	assert.NotEmpty(t, resp["user_id"])
}

func TestUser_RegisterRejectsBadEmail(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"user_email":    "not-an-email",
		"user_password": "password123",
	})
	req, err := http.NewRequest("POST", "/api/user/register", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserRegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUser_LoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)

	body, _ := json.Marshal(map[string]interface{}{
		"user_email":    "alice@example.com",
		"user_password": "wrong-password",
	})
	req, err := http.NewRequest("POST", "/api/user/login", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		user := args.Get(0).(*models.User)
		*user = models.User{
			UserID:       "user-1",
			UserEmail:    "alice@example.com",
			PasswordHash: string(hash),
		}
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db), Auth: auth.NewService("test-secret")}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, errorBody("invalid credentials", handlers.ErrInvalidCredentials), rr.Body.String())
}

func TestUser_LoginUnknownEmailAnswersLikeWrongPassword(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"user_email":    "nobody@example.com",
		"user_password": "password123",
	})
	req, err := http.NewRequest("POST", "/api/user/login", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db), Auth: auth.NewService("test-secret")}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, errorBody("invalid credentials", handlers.ErrInvalidCredentials), rr.Body.String())
}

func TestUser_LoginSuccessReturnsVerifiableToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)

	body, _ := json.Marshal(map[string]interface{}{
		"user_email":    "alice@example.com",
		"user_password": "correct-password",
	})
	req, err := http.NewRequest("POST", "/api/user/login", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		user := args.Get(0).(*models.User)
		*user = models.User{
			UserID:       "user-1",
			UserEmail:    "alice@example.com",
			PasswordHash: string(hash),
		}
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	svc := auth.NewService("test-secret")
	u := handlers.User{DB: databases.NewUserDatabase(db), Auth: svc}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp["user_id"])

	claims, err := svc.Verify(resp["token"])
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, auth.KindUser, claims.Kind)
}

func TestUser_MyVehicleNotOwned(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/user/my-vehicle/car-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("user_id", "user-1")
	req = mux.SetURLVars(req, map[string]string{"car_id": "car-1"})

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}
	vehiclesConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}
	cursor := &mocks.CursorHelper{}

	singleResultHelper.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		user := args.Get(0).(*models.User)
		*user = models.User{UserID: "user-1", VehicleInfo: []string{"car-2-abc"}}
	}).Return(nil)
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)

	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	vehiclesConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	db.On("Collection", "users").Return(usersConn)
	db.On("Collection", "sold_vehicles").Return(vehiclesConn)

	u := handlers.User{
		DB:   databases.NewUserDatabase(db),
		SVDB: databases.NewSoldVehicleDatabase(db),
		CDB:  databases.NewCarDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.MyVehicleHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, errorBody("car not found for the user", handlers.ErrNotOwned), rr.Body.String())
}

func TestUser_MyVehicleOwnedReturnsCar(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/user/my-vehicle/car-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("user_id", "user-1")
	req = mux.SetURLVars(req, map[string]string{"car_id": "car-1"})

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}
	vehiclesConn := &mocks.CollectionHelper{}
	carsConn := &mocks.CollectionHelper{}

	userResult := &mocks.SingleResultHelper{}
	userResult.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		user := args.Get(0).(*models.User)
		*user = models.User{UserID: "user-1", VehicleInfo: []string{"car-1-abc"}}
	}).Return(nil)
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)

	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		vehicles := args.Get(1).(*[]models.SoldVehicle)
		*vehicles = []models.SoldVehicle{{VehicleID: "car-1-abc", CarID: "car-1"}}
	}).Return(nil)
	vehiclesConn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	carResult := &mocks.SingleResultHelper{}
	carResult.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		car := args.Get(0).(*models.Car)
		*car = models.Car{CarID: "car-1", Type: "sedan", Name: "Falcon", Model: "GT"}
	}).Return(nil)
	carsConn.On("FindOne", mock.Anything, mock.Anything).Return(carResult)

	db.On("Collection", "users").Return(usersConn)
	db.On("Collection", "sold_vehicles").Return(vehiclesConn)
	db.On("Collection", "cars").Return(carsConn)

	u := handlers.User{
		DB:   databases.NewUserDatabase(db),
		SVDB: databases.NewSoldVehicleDatabase(db),
		CDB:  databases.NewCarDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.MyVehicleHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var car models.Car
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &car))
	assert.Equal(t, "car-1", car.CarID)
	assert.Equal(t, "Falcon", car.Name)
}

func TestUser_MyVehiclesResolvesOwnedCars(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/user/my-vehicles", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("user_id", "user-1")

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}
	vehiclesConn := &mocks.CollectionHelper{}
	carsConn := &mocks.CollectionHelper{}

	userResult := &mocks.SingleResultHelper{}
	userResult.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		user := args.Get(0).(*models.User)
		*user = models.User{UserID: "user-1", VehicleInfo: []string{"car-1-abc", "car-2-def"}}
	}).Return(nil)
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)

	vehiclesCursor := &mocks.CursorHelper{}
	vehiclesCursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		vehicles := args.Get(1).(*[]models.SoldVehicle)
		*vehicles = []models.SoldVehicle{
			{VehicleID: "car-1-abc", CarID: "car-1"},
			{VehicleID: "car-2-def", CarID: "car-2"},
		}
	}).Return(nil)
	vehiclesConn.On("Find", mock.Anything, mock.Anything).Return(vehiclesCursor, nil)

	carsCursor := &mocks.CursorHelper{}
	carsCursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		cars := args.Get(1).(*[]models.Car)
		*cars = []models.Car{
			{CarID: "car-1", Name: "Falcon"},
			{CarID: "car-2", Name: "Swift"},
		}
	}).Return(nil)
	carsConn.On("Find", mock.Anything, mock.Anything).Return(carsCursor, nil)

	db.On("Collection", "users").Return(usersConn)
	db.On("Collection", "sold_vehicles").Return(vehiclesConn)
	db.On("Collection", "cars").Return(carsConn)

	u := handlers.User{
		DB:   databases.NewUserDatabase(db),
		SVDB: databases.NewSoldVehicleDatabase(db),
		CDB:  databases.NewCarDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.MyVehiclesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var cars []models.Car
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cars))
	assert.Len(t, cars, 2)
	assert.Equal(t, "car-1", cars[0].CarID)
	assert.Equal(t, "car-2", cars[1].CarID)
}

func TestUser_MyVehiclesUnknownUser(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/user/my-vehicles", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("user_id", "ghost")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.MyVehiclesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, errorBody("user not found", mongo.ErrNoDocuments), rr.Body.String())
}
