package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/dto"
	chathandler "github.com/creditmitra/loanflow/internal/handler/chat"
	"github.com/creditmitra/loanflow/pkg/common"
)

type ChatHandlerTestSuite struct {
	suite.Suite
	app *fiber.App

	mockChatService  *MockChatService
	mockUploadRepo   *MockUploadRepository
	mockSanctionRepo *MockSanctionRepository
}

func (suite *ChatHandlerTestSuite) SetupTest() {
	suite.mockChatService = &MockChatService{
		Result: &domain.ChatResult{Replies: []domain.Reply{
			{Role: domain.RoleMaster, Text: "Hi there"},
		}},
	}
	suite.mockUploadRepo = &MockUploadRepository{FileID: "file-123"}
	suite.mockSanctionRepo = &MockSanctionRepository{}

	log := zap.NewNop()
	tracer := noop_trace.NewTracerProvider().Tracer("test-chat-handler-tracer")
	meter := noop_metric.NewMeterProvider().Meter("test-chat-handler-meter")

	handler := chathandler.NewChatHandler(
		suite.mockChatService,
		suite.mockUploadRepo,
		suite.mockSanctionRepo,
		meter, tracer, log,
	)

	app := fiber.New()
	api := app.Group("/api/v1")
	{
		api.Post("/chat", handler.Chat)
		api.Post("/upload", handler.Upload)
		api.Get("/sanction/:filename", handler.DownloadSanction)
	}

	suite.app = app
}

func (suite *ChatHandlerTestSuite) postJSON(path string, body any) *http.Response {
	payload, err := json.Marshal(body)
	assert.NoError(suite.T(), err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	return resp
}

func (suite *ChatHandlerTestSuite) TestChatSuccess() {
	resp := suite.postJSON("/api/v1/chat", dto.ChatRequest{
		SessionID:  "sess-1",
		CustomerID: "CUST001",
		Message:    "hello",
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.ChatResponse
	assert.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(suite.T(), body.Replies, 1)
	assert.Equal(suite.T(), "master", body.Replies[0].Role)
	assert.Equal(suite.T(), "Hi there", body.Replies[0].Text)

	assert.Equal(suite.T(), "sess-1", suite.mockChatService.LastRequest.SessionID)
	assert.Equal(suite.T(), "CUST001", suite.mockChatService.LastRequest.CustomerID)
}

func (suite *ChatHandlerTestSuite) TestChatSanctionURLPassthrough() {
	suite.mockChatService.Result = &domain.ChatResult{
		Replies: []domain.Reply{
			{Role: domain.RoleSanction, Text: "📄 Sanction letter generated successfully.",
				Meta: map[string]string{"link": "/api/v1/sanction/sanction_CUST001_ab12cd34.txt"}},
		},
		SanctionURL: "/api/v1/sanction/sanction_CUST001_ab12cd34.txt",
	}

	resp := suite.postJSON("/api/v1/chat", dto.ChatRequest{
		SessionID:  "sess-1",
		CustomerID: "CUST001",
		Message:    "yes",
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.ChatResponse
	assert.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), "/api/v1/sanction/sanction_CUST001_ab12cd34.txt", body.SanctionURL)
	assert.Equal(suite.T(), body.SanctionURL, body.Replies[0].Meta["link"])
}

func (suite *ChatHandlerTestSuite) TestChatMissingFieldsFailsValidation() {
	resp := suite.postJSON("/api/v1/chat", map[string]string{"message": "hello"})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Zero(suite.T(), suite.mockChatService.LastRequest.SessionID)
}

func (suite *ChatHandlerTestSuite) TestChatMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *ChatHandlerTestSuite) TestChatServiceError() {
	suite.mockChatService.MockError = assert.AnError

	resp := suite.postJSON("/api/v1/chat", dto.ChatRequest{
		SessionID:  "sess-1",
		CustomerID: "CUST001",
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusInternalServerError, resp.StatusCode)
}

func (suite *ChatHandlerTestSuite) TestUploadSuccess() {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "salary_slip.pdf")
	assert.NoError(suite.T(), err)
	_, err = part.Write([]byte("%PDF-1.4 test payload"))
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.UploadResponse
	assert.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(suite.T(), "file-123", body.FileID)
	assert.Equal(suite.T(), "salary_slip.pdf", body.Filename)
	assert.Equal(suite.T(), 1, suite.mockUploadRepo.StoreCount)
}

func (suite *ChatHandlerTestSuite) TestUploadMissingFile() {
	resp := suite.postJSON("/api/v1/upload", map[string]string{})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Zero(suite.T(), suite.mockUploadRepo.StoreCount)
}

func (suite *ChatHandlerTestSuite) TestDownloadSanctionServesFile() {
	dir := suite.T().TempDir()
	path := filepath.Join(dir, "sanction_CUST001_ab12cd34.txt")
	assert.NoError(suite.T(), os.WriteFile(path, []byte("SANCTION LETTER"), 0o644))
	suite.mockSanctionRepo.Path = path

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sanction/sanction_CUST001_ab12cd34.txt", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	content, err := io.ReadAll(resp.Body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "SANCTION LETTER", string(content))
}

func (suite *ChatHandlerTestSuite) TestDownloadSanctionNotFound() {
	suite.mockSanctionRepo.MockError = common.ErrFileNotFound

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sanction/missing.txt", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func TestChatHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ChatHandlerTestSuite))
}
