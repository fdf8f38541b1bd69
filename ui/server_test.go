package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"adimpact/app"
	"adimpact/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const adsCSV = "Ad name,Video average play time,Amount spent (USD),Frequency\n" +
	"spring_launch,00:00:05,40,1.2\n" +
	"autumn_launch,00:00:09,20,2.4\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.GinMode = gin.TestMode
	s, err := NewServer(cfg.Server, app.NewReportService(cfg.Report))
	require.NoError(t, err)
	return s
}

func salesXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Order UTM campaign", "Orders", "Total sales"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"spring_launch", 4, 160}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"autumn_launch", 9, 90}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type upload struct {
	field, name string
	body        []byte
}

func multipartRequest(t *testing.T, format string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	if format != "" {
		require.NoError(t, w.WriteField(fieldFormat, format))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/report", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexShowsUploadPrompt(t *testing.T) {
	rec := serve(newTestServer(t), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Ad Engagement Impact Dashboard</title>")
	assert.Contains(t, rec.Body.String(), uploadPrompt)
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReport_RendersDashboard(t *testing.T) {
	req := multipartRequest(t, "",
		upload{fieldAds, "meta.csv", []byte(adsCSV)},
		upload{fieldSales, "shopify.xlsx", salesXLSX(t)},
	)
	rec := serve(newTestServer(t), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "Top 50 Ads by Orders")
	assert.Contains(t, body, "autumn_launch")
	assert.Contains(t, body, "launch")
	assert.NotContains(t, body, uploadPrompt)
}

func TestReport_JSON(t *testing.T) {
	req := multipartRequest(t, "json",
		upload{fieldAds, "meta.csv", []byte(adsCSV)},
		upload{fieldSales, "shopify.xlsx", salesXLSX(t)},
	)
	rec := serve(newTestServer(t), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decoded struct {
		TopCampaigns []struct {
			AdName string  `json:"ad_name"`
			Orders float64 `json:"orders"`
		} `json:"top_campaigns"`
		Keywords struct {
			Keywords []string `json:"keywords"`
		} `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Len(t, decoded.TopCampaigns, 2)
	assert.Equal(t, "autumn_launch", decoded.TopCampaigns[0].AdName)
	assert.Equal(t, 9.0, decoded.TopCampaigns[0].Orders)
	assert.Equal(t, []string{"launch"}, decoded.Keywords.Keywords)
}

func TestReport_MarkdownDownload(t *testing.T) {
	req := multipartRequest(t, "markdown",
		upload{fieldAds, "meta.csv", []byte(adsCSV)},
		upload{fieldSales, "shopify.xlsx", salesXLSX(t)},
	)
	rec := serve(newTestServer(t), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "# Ad Engagement Impact Dashboard")
}

func TestReport_PromptsUntilBothFilesPresent(t *testing.T) {
	req := multipartRequest(t, "", upload{fieldAds, "meta.csv", []byte(adsCSV)})
	rec := serve(newTestServer(t), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), uploadPrompt)
}

func TestReport_MissingColumn(t *testing.T) {
	sales := "Order UTM campaign,Total sales\nspring_launch,10\n"
	req := multipartRequest(t, "",
		upload{fieldAds, "meta.csv", []byte(adsCSV)},
		upload{fieldSales, "shopify.csv", []byte(sales)},
	)
	rec := serve(newTestServer(t), req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Orders")
}

func TestReport_UnsupportedFileType(t *testing.T) {
	req := multipartRequest(t, "",
		upload{fieldAds, "meta.pdf", []byte("%PDF")},
		upload{fieldSales, "shopify.xlsx", salesXLSX(t)},
	)
	rec := serve(newTestServer(t), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_EmptyUploadIsBadRequest(t *testing.T) {
	req := multipartRequest(t, "",
		upload{fieldAds, "meta.csv", []byte{}},
		upload{fieldSales, "shopify.xlsx", salesXLSX(t)},
	)
	rec := serve(newTestServer(t), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no header row")
}

func TestReport_CorruptWorkbookIsBadRequest(t *testing.T) {
	req := multipartRequest(t, "",
		upload{fieldAds, "meta.csv", []byte(adsCSV)},
		upload{fieldSales, "shopify.xlsx", []byte("not a zip archive")},
	)
	rec := serve(newTestServer(t), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_AdNamesRenderAsText(t *testing.T) {
	const name = "<img src=x onerror=alert(1)>"
	ads := "Ad name,Amount spent (USD),Frequency\n" + name + ",10,1\nplain_ad,5,2\n"
	sales := "Order UTM campaign,Orders,Total sales\n" + name + ",3,30\nplain_ad,1,5\n"

	req := multipartRequest(t, "",
		upload{fieldAds, "meta.csv", []byte(ads)},
		upload{fieldSales, "shopify.csv", []byte(sales)},
	)
	rec := serve(newTestServer(t), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "<img")
	assert.Contains(t, rec.Body.String(), "&lt;img src=x onerror=alert(1)&gt;")
}
