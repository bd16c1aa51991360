package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/records-service/internal/config"
	"gitlab.com/dirk.krummacker/records-service/internal/form"
	"gitlab.com/dirk.krummacker/records-service/internal/logging"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
	"gitlab.com/dirk.krummacker/records-service/internal/region"
)

// Error codes of failures that are not validation failures.
const (
	CodeInvalidJSON    = "invalid_json"
	CodeInvalidID      = "invalid_id"
	CodeNotFound       = "not_found"
	CodeStoreFailure   = "store_failure"
	CodeUnknownCountry = "unknown_country"
	CodeUnknownState   = "unknown_state"
)

// db is a handle to the database.
var db *sqlx.DB

// insert is a prepared statement for creating a record on the database.
var insert *sqlx.NamedStmt

// selectAll is a prepared statement for selecting all records in the order of their ids.
var selectAll *sqlx.Stmt

// selectWhereId is a prepared statement for selecting the record with a given id.
var selectWhereId *sqlx.Stmt

// update is a prepared statement replacing all fields of the record with a given id.
var update *sqlx.NamedStmt

// regions answers the region endpoints.
var regions region.Provider

// CreateDatabase opens a connection pool to the MySQL database described by cfg.
func CreateDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return sqlDB, nil
}

// SetupDatabaseWrapper initializes the sqlx database wrapper with the specified sql database. It
// then prepares all statements. The database argument can be a real database for production use
// or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB) error {
	var err error
	db = sqlx.NewDb(sqlDB, "mysql")

	// Prepared statements offer a significant speed increase if executed many times.
	insert, err = db.PrepareNamed(`
		INSERT INTO records (firstname, lastname, phone, email, address, state, district, city, zip)
		VALUES (:firstname, :lastname, :phone, :email, :address, :state, :district, :city, :zip)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	selectAll, err = db.Preparex(`
		SELECT * FROM records ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("prepare select all: %w", err)
	}
	selectWhereId, err = db.Preparex(`
		SELECT * FROM records WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("prepare select by id: %w", err)
	}
	update, err = db.PrepareNamed(`
		UPDATE records
		SET firstname = :firstname, lastname = :lastname, phone = :phone, email = :email,
			address = :address, state = :state, district = :district, city = :city, zip = :zip
		WHERE id = :id
	`)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	return nil
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. Request logging
// can be turned off for load tests.
func SetupHttpRouter(logRequests bool, provider region.Provider) *gin.Engine {
	regions = provider
	router := gin.New()
	router.Use(logging.RequestIDMiddleware())
	if logRequests {
		router.Use(logging.RequestLogger())
	} else {
		slog.Info("turning off HTTP request logging")
	}
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	v1.GET("/records", findRecords)
	v1.POST("/records", createRecord)
	v1.GET("/records/:id", findRecordByID)
	v1.PUT("/records/:id", updateRecordByID)
	v1.GET("/regions/:country/states", findStates)
	v1.GET("/regions/:country/states/:state/districts", findDistricts)
	return router
}

// respondError logs the technical error with the request id and answers with a message meant
// for the user.
func respondError(c *gin.Context, status int, code string, message string, err error) {
	if err != nil {
		logging.FromContext(c.Request.Context()).Error(message,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message, "code": code})
}

// parseID returns the numeric id of the request URL, or answers with NOT FOUND.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, CodeInvalidID, "invalid id parameter", nil)
		return 0, false
	}
	return id, true
}

// bindFields reads the record fields from the request body and validates them. On failure it
// answers with BAD REQUEST.
func bindFields(c *gin.Context) (model.Fields, bool) {
	var fields model.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidJSON, "invalid JSON", nil)
		return model.Fields{}, false
	}
	if err := form.Validate(fields); err != nil {
		logging.FromContext(c.Request.Context()).Debug("record rejected", "error", err)
		respondError(c, http.StatusBadRequest, form.Code(err), form.UserMessage(err), nil)
		return model.Fields{}, false
	}
	return fields, true
}

// findRecord selects the record with the given id. found is false if there is none.
func findRecord(id int64) (record model.Record, found bool, err error) {
	var records []model.Record
	if err := selectWhereId.Select(&records, id); err != nil {
		return model.Record{}, false, err
	}
	if len(records) == 0 {
		return model.Record{}, false, nil
	}
	return records[0], true, nil
}

// findRecords responds with all records ordered by id. An empty database gives an empty list.
//
// Example REST API call:
//
//	> curl http://localhost:8080/v1/records
func findRecords(c *gin.Context) {
	records := []model.Record{}
	if err := selectAll.Select(&records); err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not list records", err)
		return
	}
	c.IndentedJSON(http.StatusOK, records)
}

// createRecord inserts the record specified in the request's JSON into the database. It responds
// with the stored record including the newly assigned id and the timestamps.
//
// Example REST API call:
//
//	> curl http://localhost:8080/v1/records --request "POST" --include --header "Content-Type: application/json" --data '{"firstName": "Anita", "lastName": "Rao", "phone": "(987)-654-3210", "email": "anita@example.com", "address": "12 MG Road", "state": "KA", "district": "Mysuru", "city": "Mysuru", "zip": "570001"}'
func createRecord(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	result, err := insert.Exec(fields)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not create record", err)
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not create record", err)
		return
	}
	record, found, err := findRecord(id)
	if err != nil || !found {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not read created record",
			errors.Join(err, fmt.Errorf("record %d", id)))
		return
	}
	c.IndentedJSON(http.StatusCreated, record)
}

// findRecordByID locates the record whose ID value matches the id parameter of the request URL,
// then returns that record as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/v1/records/56
func findRecordByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	record, found, err := findRecord(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not read record", err)
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, CodeNotFound, "record not found", nil)
		return
	}
	c.IndentedJSON(http.StatusOK, record)
}

// updateRecordByID replaces all fields of the record whose ID value matches the id parameter of
// the request URL with the values of the JSON, and responds with the new version of the record.
//
// Example REST API call:
//
//	> curl http://localhost:8080/v1/records/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"firstName": "Anita", "lastName": "Rao", "phone": "(987)-654-3210", "email": "anita@example.com", "address": "12 MG Road", "state": "KA", "district": "Udupi", "city": "Udupi", "zip": "576101"}'
func updateRecordByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	result, err := update.Exec(model.Record{Id: id, Fields: fields})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not update record", err)
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not update record", err)
		return
	}
	if rowsAffected == 0 {
		respondError(c, http.StatusNotFound, CodeNotFound, "record not found", nil)
		return
	}

	// In the HTTP response, return the full record after the update.
	record, found, err := findRecord(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeStoreFailure, "could not read record", err)
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, CodeNotFound, "record not found", nil)
		return
	}
	c.IndentedJSON(http.StatusOK, record)
}

// findStates responds with the states of a country.
//
// Example REST API call:
//
//	> curl http://localhost:8080/v1/regions/IN/states
func findStates(c *gin.Context) {
	states := regions.States(c.Param("country"))
	if len(states) == 0 {
		respondError(c, http.StatusNotFound, CodeUnknownCountry, "country not found", nil)
		return
	}
	c.IndentedJSON(http.StatusOK, states)
}

// findDistricts responds with the districts of a state.
//
// Example REST API call:
//
//	> curl http://localhost:8080/v1/regions/IN/states/KA/districts
func findDistricts(c *gin.Context) {
	country, state := c.Param("country"), c.Param("state")
	if !region.HasState(regions, country, state) {
		respondError(c, http.StatusNotFound, CodeUnknownState, "state not found", nil)
		return
	}
	districts := regions.Districts(country, state)
	if districts == nil {
		districts = []string{}
	}
	c.IndentedJSON(http.StatusOK, districts)
}
