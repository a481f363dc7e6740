package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"attesta/internal/purpose"
	"attesta/internal/token"
	vmodels "attesta/internal/verification/models"
	id "attesta/pkg/domain"
)

type stubTokenRedeemer struct {
	result *vmodels.DisclosureResult
	err    error

	lastRawID string
	lastUA    string
}

func (r *stubTokenRedeemer) Redeem(_ context.Context, rawRequestID string, verifierUA string) (*vmodels.DisclosureResult, error) {
	r.lastRawID = rawRequestID
	r.lastUA = verifierUA
	return r.result, r.err
}

type HandlerSuite struct {
	suite.Suite
	redeemer *stubTokenRedeemer
	router   chi.Router
}

func (s *HandlerSuite) SetupTest() {
	s.redeemer = &stubTokenRedeemer{}
	s.router = chi.NewRouter()
	h := NewHandler(s.redeemer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) tokenPNG(requestID id.RequestID) []byte {
	codec := token.NewCodec("https://attesta.example")
	data, err := codec.Encode(requestID)
	s.Require().NoError(err)
	return data
}

func (s *HandlerSuite) multipartBody(fieldName string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, "scan.png")
	s.Require().NoError(err)
	_, err = part.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())
	return body, writer.FormDataContentType()
}

func (s *HandlerSuite) TestScan_MultipartVerified() {
	requestID := id.NewRequestID()
	s.redeemer.result = &vmodels.DisclosureResult{
		Valid:      true,
		Purpose:    purpose.KeyAgeVerification,
		Attributes: map[string]string{purpose.AttrAgeOver18: "true"},
	}

	body, contentType := s.multipartBody("image", s.tokenPNG(requestID))
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "TerminalApp/2.1")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(requestID.String(), s.redeemer.lastRawID)
	s.Equal("TerminalApp/2.1", s.redeemer.lastUA)

	var resp OutcomeResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(string(StateVerified), resp.State)
	s.True(resp.Display.Valid)
	s.Require().Len(resp.Display.Fields, 1)
	s.Equal("21+", resp.Display.Fields[0].Value)
}

func (s *HandlerSuite) TestScan_RawBodyUpload() {
	requestID := id.NewRequestID()
	s.redeemer.result = &vmodels.DisclosureResult{Valid: false, Reason: "expired"}

	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(s.tokenPNG(requestID)))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)

	var resp OutcomeResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(string(StateInvalid), resp.State)
	s.False(resp.Display.Valid)
	s.Empty(resp.Display.Fields)
}

func (s *HandlerSuite) TestScan_NoTokenInImage() {
	blank := bytes.Buffer{}
	s.Require().NoError(png.Encode(&blank, image.NewRGBA(image.Rect(0, 0, 64, 64))))

	body, contentType := s.multipartBody("image", blank.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Empty(s.redeemer.lastRawID, "no redemption without a token")

	var resp OutcomeResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(string(StateFailed), resp.State)
	s.Equal(ReasonTokenNotFound, resp.Reason)
}

func (s *HandlerSuite) TestScan_MissingImagePart() {
	body, contentType := s.multipartBody("file", []byte("not the right field"))
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}
