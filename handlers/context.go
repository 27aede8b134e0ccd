// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi "ince" (thin) olmalı:
// 1. Request'i parse et (path, query, JSON veya multipart)
// 2. Service katmanını çağır
// 3. Sonucu pkg.JSON / pkg.Paginated / pkg.Error ile döndür
//
// Handler iş mantığı içermez ve DB'ye doğrudan erişmez.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

// contextKey, context.Value için özel key tipi — string key'lerle çakışmaz.
type contextKey string

// UserContextKey, auth middleware'in doğruladığı *models.User'ı taşır.
const UserContextKey contextKey = "user"

// multipartMemory, ParseMultipartForm'un RAM'de tuttuğu üst sınır; fazlası geçici dosyaya yazılır.
const multipartMemory = 8 << 20

var errInvalidBody = errors.New("invalid request body")

// currentUser, context'teki kullanıcıyı döner. Yoksa 401 yazar ve false döner.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok || user == nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return nil, false
	}
	return user, true
}

// decodeJSON, body'yi dst'ye parse eder. Hata durumunda 400 yazar ve false döner.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, errInvalidBody.Error())
		return false
	}
	return true
}

// decodeJSONKeys, decodeJSON gibi çalışır ama body'de bulunan üst seviye
// anahtarları da döner. Partial update'lerde "null gönderildi" ile
// "hiç gönderilmedi" ayrımı bu anahtarlarla yapılır.
func decodeJSONKeys(w http.ResponseWriter, r *http.Request, dst any) (map[string]json.RawMessage, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, errInvalidBody.Error())
		return nil, false
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, errInvalidBody.Error())
		return nil, false
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(dst); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, errInvalidBody.Error())
		return nil, false
	}
	return keys, true
}

// listParams, ortak liste query parametreleri: ?q=&sort=&page=&limit=
func listParams(r *http.Request) models.ListParams {
	q := r.URL.Query()
	return models.ListParams{
		Query: q.Get("q"),
		Sort:  q.Get("sort"),
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}
}

// queryInt, sayısal query parametresi. Geçersiz veya boşsa 0 — Normalize varsayılana çeker.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// queryMoney, kuruş cinsinden fiyat filtresi. Boş veya geçersizse nil.
func queryMoney(r *http.Request, key string) *int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// queryBool, "1", "true", "yes" → true.
func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// paginated, liste sonucu + sayfa meta bilgisi. Normalize edilmiş params ile çağrılmalı.
func paginated[T any](w http.ResponseWriter, items []T, params models.ListParams, total int) {
	if items == nil {
		items = []T{}
	}
	params.Normalize()
	pkg.Paginated(w, items, params.Page, params.Limit, total)
}

// formImage, multipart form'daki "file" alanını döner. Çağıran file.Close() yapmalı.
func formImage(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file field is required")
		return nil, nil, false
	}
	return file, header, true
}

func message(w http.ResponseWriter, text string) {
	pkg.JSON(w, http.StatusOK, map[string]string{"message": text})
}
