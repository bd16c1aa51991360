package service

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/records-service/internal/region"
)

// recordColumns are the columns of the records table in the order of the schema.
var recordColumns = []string{
	"id", "firstname", "lastname", "phone", "email", "address",
	"state", "district", "city", "zip", "created_at", "updated_at",
}

var created = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

// validBody is a request body that passes validation.
const validBody = `
	{
		"firstName": "Anita",
		"lastName": "Rao",
		"phone": "(987)-654-3210",
		"email": "anita@example.com",
		"address": "12 MG Road",
		"state": "KA",
		"district": "Mysuru",
		"city": "Mysuru",
		"zip": "570001"
	}
`

// validArgs are the statement arguments produced by validBody.
var validArgs = []driver.Value{
	"Anita", "Rao", "(987)-654-3210", "anita@example.com", "12 MG Road",
	"KA", "Mysuru", "Mysuru", "570001",
}

// createMockObjects builds a mock database handle and a mock object for defining our expected SQL
// calls.
func createMockObjects(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	return db, mock
}

// expectPreparedStatements instructs the mock object to expect that several statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO records")
	mock.ExpectPrepare("SELECT \\* FROM records ORDER BY id")
	mock.ExpectPrepare("SELECT \\* FROM records WHERE id = \\?")
	mock.ExpectPrepare("UPDATE records")
}

// addRecordRow appends a row with the values of validBody and the given city to rows.
func addRecordRow(rows *sqlmock.Rows, id int64, first string, city string) *sqlmock.Rows {
	return rows.AddRow(id, first, "Rao", "(987)-654-3210", "anita@example.com", "12 MG Road",
		"KA", "Mysuru", city, "570001", created, created)
}

// expectSingleRowSelect instructs the mock object to expect that a select statement for a single
// record will be executed.
func expectSingleRowSelect(mock sqlmock.Sqlmock, id int64, first string, city string) {
	rows := addRecordRow(mock.NewRows(recordColumns), id, first, city)
	mock.ExpectQuery("SELECT \\* FROM records WHERE id = \\?").
		WithArgs(id).
		WillReturnRows(rows)
}

// initializeRecordsService sets up the records service with the mock database and returns a
// handle to the gin engine against which requests can be executed.
func initializeRecordsService(t *testing.T, db *sql.DB) *gin.Engine {
	require.NoError(t, SetupDatabaseWrapper(db))
	gin.SetMode(gin.ReleaseMode)
	return SetupHttpRouter(false, region.Default())
}

// runTest executes the HTTP request with the specified arguments and returns the response.
func runTest(t *testing.T, db *sql.DB, method string, url string, body *strings.Reader) *httptest.ResponseRecorder {
	router := initializeRecordsService(t, db)
	recorder := httptest.NewRecorder()
	if body == nil {
		body = strings.NewReader("")
	}
	request, _ := http.NewRequest(method, url, body)
	router.ServeHTTP(recorder, request)
	return recorder
}

// decodeError returns the message and code of an error response.
func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) (message string, code string) {
	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body["message"], body["code"]
}

// TestGetAll executes a GET request for all records in the database. It expects that the JSON
// for a list of records is returned in the order of their ids.
func TestGetAll(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	rows := mock.NewRows(recordColumns)
	addRecordRow(rows, 1, "Aaron", "Mysuru")
	addRecordRow(rows, 2, "Berta", "Udupi")
	addRecordRow(rows, 3, "Carla", "Hubballi")
	mock.ExpectQuery("SELECT \\* FROM records ORDER BY id").
		WillReturnRows(rows)

	// Run test and compare results
	recorder := runTest(t, db, "GET", "/v1/records", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, 1.0, records[0]["id"])
	assert.Equal(t, "Aaron", records[0]["firstName"])
	assert.Equal(t, "Mysuru", records[0]["city"])
	assert.Equal(t, "2024-05-01T10:00:00Z", records[0]["createdAt"])
	assert.Equal(t, 2.0, records[1]["id"])
	assert.Equal(t, "Udupi", records[1]["city"])
	assert.Equal(t, "Carla", records[2]["firstName"])

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetAllEmpty expects an empty JSON list for an empty database.
func TestGetAllEmpty(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT \\* FROM records ORDER BY id").
		WillReturnRows(mock.NewRows(recordColumns))

	recorder := runTest(t, db, "GET", "/v1/records", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "[]", recorder.Body.String())
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetAllDatabaseFailure expects a failing query to be answered with INTERNAL SERVER ERROR
// and a store failure code.
func TestGetAllDatabaseFailure(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT \\* FROM records ORDER BY id").
		WillReturnError(errors.New("connection lost"))

	recorder := runTest(t, db, "GET", "/v1/records", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	message, code := decodeError(t, recorder)
	assert.Equal(t, CodeStoreFailure, code)
	assert.NotContains(t, message, "connection lost")
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGet executes a GET request for a single record with a valid ID. It expects that the JSON
// for the record is returned.
func TestGet(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	expectSingleRowSelect(mock, 29, "Anita", "Mysuru")

	// Run test and compare results
	recorder := runTest(t, db, "GET", "/v1/records/29", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var getBody map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &getBody))
	assert.Equal(t, 29.0, getBody["id"])
	assert.Equal(t, "Anita", getBody["firstName"])
	assert.Equal(t, "(987)-654-3210", getBody["phone"])
	assert.Equal(t, "570001", getBody["zip"])
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetInvalidNumericID executes a GET request with an invalid but still numeric ID for a single
// record. It expects that the HTTP request is answered with the NOT FOUND status code.
func TestGetInvalidNumericID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT \\* FROM records WHERE id = \\?").
		WithArgs(int64(9999)).
		WillReturnRows(mock.NewRows(recordColumns))

	// Run test and compare results
	recorder := runTest(t, db, "GET", "/v1/records/9999", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	_, code := decodeError(t, recorder)
	assert.Equal(t, CodeNotFound, code)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetInvalidCharacterID executes a GET request with an invalid ID consisting of characters.
// It expects that the HTTP request is answered with the NOT FOUND status code. It also expects
// that we do not reach out to the database in the first place.
func TestGetInvalidCharacterID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)

	// Run test and compare results
	recorder := runTest(t, db, "GET", "/v1/records/INVALID", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPost executes a POST request with a valid body. It expects that the HTTP request is
// answered with the CREATED status code and a body with the stored record.
func TestPost(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectExec("INSERT INTO records").
		WithArgs(validArgs...).
		WillReturnResult(sqlmock.NewResult(42, 1))
	expectSingleRowSelect(mock, 42, "Anita", "Mysuru")

	// Run test and compare results
	recorder := runTest(t, db, "POST", "/v1/records", strings.NewReader(validBody))
	assert.Equal(t, http.StatusCreated, recorder.Code)
	var postBody map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &postBody))
	assert.Equal(t, 42.0, postBody["id"])
	assert.Equal(t, "Anita", postBody["firstName"])
	assert.Equal(t, "Mysuru", postBody["district"])
	assert.Equal(t, "2024-05-01T10:00:00Z", postBody["createdAt"])
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPostDatabaseFailure expects a failing insert to be answered with INTERNAL SERVER ERROR.
func TestPostDatabaseFailure(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectExec("INSERT INTO records").
		WithArgs(validArgs...).
		WillReturnError(errors.New("disk full"))

	recorder := runTest(t, db, "POST", "/v1/records", strings.NewReader(validBody))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	_, code := decodeError(t, recorder)
	assert.Equal(t, CodeStoreFailure, code)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPostInvalidBodies executes POST requests with invalid bodies. It expects that the HTTP
// requests are all answered with the BAD REQUEST status code.
func TestPostInvalidBodies(t *testing.T) {
	invalidRequestBodies := []string{
		"",
		"not JSON",
		`{
			"firstName": "Anita"
			"lastName": "Rao"
		}`, // commas missing
	}
	for _, body := range invalidRequestBodies {
		db, mock := createMockObjects(t)
		defer db.Close()

		// Define expectations on SQL statements
		expectPreparedStatements(mock) // we expect that the call will fail before the SQL statements

		// Run test and compare results
		recorder := runTest(t, db, "POST", "/v1/records", strings.NewReader(body))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "request body: "+body)
		_, code := decodeError(t, recorder)
		assert.Equal(t, CodeInvalidJSON, code, "request body: "+body)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	}
}

// TestPostInvalidRecords executes POST requests with well-formed JSON that fails validation. It
// expects the BAD REQUEST status code with the message and code of the first failed check, and
// that the database is not touched.
func TestPostInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		message string
		code    string
	}{
		{"missing field", [2]string{`"Rao"`, `""`}, "Please fill all required fields", "missing_fields"},
		{"email", [2]string{"anita@example.com", "anita@example"}, "Please enter a valid email address", "invalid_email"},
		{"phone", [2]string{"(987)-654-3210", "9876543210"}, "Please enter a valid phone number", "invalid_phone"},
		{"zip", [2]string{"570001", "57000"}, "ZIP code must be exactly 6 characters", "invalid_zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := createMockObjects(t)
			defer db.Close()
			expectPreparedStatements(mock)

			body := strings.Replace(validBody, tt.replace[0], tt.replace[1], 1)
			recorder := runTest(t, db, "POST", "/v1/records", strings.NewReader(body))
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			message, code := decodeError(t, recorder)
			assert.Equal(t, tt.message, message)
			assert.Equal(t, tt.code, code)
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

// TestPostEmptyJSON executes a POST request with an empty object. It expects that the HTTP request
// is answered with the BAD REQUEST status code because all fields are required.
func TestPostEmptyJSON(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)

	recorder := runTest(t, db, "POST", "/v1/records", strings.NewReader("{}"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	_, code := decodeError(t, recorder)
	assert.Equal(t, "missing_fields", code)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPut executes a PUT request with a valid ID and body. It expects that the HTTP request is
// answered with the OK status code and a body with all values of the record.
func TestPut(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	args := append([]driver.Value{}, validArgs...)
	args[7] = "Udupi"
	mock.ExpectExec("UPDATE records").
		WithArgs(append(args, int64(17))...).
		WillReturnResult(sqlmock.NewResult(-1, 1))
	expectSingleRowSelect(mock, 17, "Anita", "Udupi")

	// Run test and compare results
	body := strings.Replace(validBody, `"city": "Mysuru"`, `"city": "Udupi"`, 1)
	recorder := runTest(t, db, "PUT", "/v1/records/17", strings.NewReader(body))
	assert.Equal(t, http.StatusOK, recorder.Code)
	var putBody map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &putBody))
	assert.Equal(t, 17.0, putBody["id"])
	assert.Equal(t, "Udupi", putBody["city"])
	assert.Equal(t, "Mysuru", putBody["district"])
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPutInvalidNumericID executes a PUT request with an invalid but still numeric ID and
// otherwise valid body for a single record. It expects that the HTTP request is answered with the
// NOT FOUND status code.
func TestPutInvalidNumericID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	mock.ExpectExec("UPDATE records").
		WithArgs(append(append([]driver.Value{}, validArgs...), int64(9999))...).
		WillReturnResult(sqlmock.NewResult(-1, 0))

	// Run test and compare results
	recorder := runTest(t, db, "PUT", "/v1/records/9999", strings.NewReader(validBody))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	message, _ := decodeError(t, recorder)
	assert.Equal(t, "record not found", message)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPutInvalidCharacterID executes a PUT request with an invalid ID consisting of characters.
// It expects that the HTTP request is answered with the NOT FOUND status code. It also expects
// that we do not reach out to the database in the first place.
func TestPutInvalidCharacterID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)

	// Run test and compare results
	recorder := runTest(t, db, "PUT", "/v1/records/INVALID", strings.NewReader(validBody))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestPutInvalidBodies executes PUT requests with valid IDs but invalid bodies. It expects
// that the HTTP requests are all answered with the BAD REQUEST status code.
func TestPutInvalidBodies(t *testing.T) {
	invalidRequestBodies := []string{
		"",
		"{}",
		"not JSON",
		`{"firstName": "Anita"}`, // partial updates are not supported
		strings.Replace(validBody, "570001", "5700", 1),
	}
	for _, body := range invalidRequestBodies {
		db, mock := createMockObjects(t)
		defer db.Close()

		// Define expectations on SQL statements
		expectPreparedStatements(mock) // we expect that the call will fail before the SQL statements

		// Run test and compare results
		recorder := runTest(t, db, "PUT", "/v1/records/1", strings.NewReader(body))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "request body: "+body)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	}
}

// TestGetStates expects the states of the configured country.
func TestGetStates(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	recorder := runTest(t, db, "GET", "/v1/regions/IN/states", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var states []region.State
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &states))
	assert.Contains(t, states, region.State{Code: "KA", Name: "Karnataka"})
}

// TestGetStatesUnknownCountry expects NOT FOUND for a country without reference data.
func TestGetStatesUnknownCountry(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock)

	recorder := runTest(t, db, "GET", "/v1/regions/XX/states", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	_, code := decodeError(t, recorder)
	assert.Equal(t, CodeUnknownCountry, code)
}

// TestGetDistricts expects the districts of a state, and NOT FOUND for an unknown state.
func TestGetDistricts(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	expectPreparedStatements(mock) // one router per request
	expectPreparedStatements(mock)

	recorder := runTest(t, db, "GET", "/v1/regions/IN/states/MH/districts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var districts []string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &districts))
	assert.Contains(t, districts, "Pune")

	recorder = runTest(t, db, "GET", "/v1/regions/IN/states/ZZ/districts", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	_, code := decodeError(t, recorder)
	assert.Equal(t, CodeUnknownState, code)
}
