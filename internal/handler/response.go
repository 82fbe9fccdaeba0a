package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/knowvia/knowvia-server/internal/middleware"
	"github.com/knowvia/knowvia-server/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// insertResponse は作成系APIのレスポンス。
type insertResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// writeJSON は指定ステータスでJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// decodeBody はリクエストボディをvにデコードする。
// 失敗した場合は400を書き込み、falseを返す。
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), v); err != nil {
		reason := err.Error()
		if errors.Is(err, io.EOF) {
			reason = "body is empty"
		}
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(reason))
		return false
	}
	return true
}

// decodeObject はJSONオブジェクトのボディを生のフィールドマップとしてデコードする。
// 値は再エンコードせずそのまま保持する。
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	var payload map[string]json.RawMessage
	if !decodeBody(w, r, &payload) {
		return nil, false
	}
	if payload == nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("body must be a JSON object"))
		return nil, false
	}
	return payload, true
}
