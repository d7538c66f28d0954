package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"stemhub/core/auth"
	"stemhub/logger"
	"stemhub/model"
)

// APIBasePath is where the versioned API is mounted.
const APIBasePath = "/api/v1"

// route is one endpoint under APIBasePath. The same table registers the
// handlers and describes them in the OpenAPI document.
type route struct {
	method  string
	path    string
	handler http.HandlerFunc
	tag     string
	summary string
	secured bool
	body    string // request schema, empty when the route takes no JSON body
	upload  bool
	status  int
	result  string // response data schema
}

// roleWriters may create and change tracks and stems.
var roleWriters = []string{auth.RoleAdmin, auth.RoleArtist}

func (h *APIHandler) apiRoutes() []route {
	return []route{
		// 音轨
		{http.MethodPost, "/tracks", h.RequireRole(h.CreateTrackHandler, roleWriters...), "Tracks", "Create a track", true, "CreateTrack", false, http.StatusCreated, "Track"},
		{http.MethodGet, "/tracks", h.GetTracksHandler, "Tracks", "List all tracks", false, "", false, http.StatusOK, "TrackList"},
		{http.MethodGet, "/tracks/{id}", h.GetTrackHandler, "Tracks", "Get a track", false, "", false, http.StatusOK, "Track"},
		{http.MethodPut, "/tracks/{id}/audio", h.AuthMiddleware(h.UploadTrackAudioHandler), "Tracks", "Upload the audio of a track", true, "", true, http.StatusCreated, "Track"},
		{http.MethodPut, "/tracks/{id}", h.RequireRole(h.UpdateTrackHandler, roleWriters...), "Tracks", "Update a track", true, "UpdateTrack", false, http.StatusOK, "Track"},
		{http.MethodDelete, "/tracks/{id}", h.RequireRole(h.DeleteTrackHandler, roleWriters...), "Tracks", "Delete a track and its audio files", true, "", false, http.StatusOK, ""},

		// 分轨
		{http.MethodPost, "/stems", h.RequireRole(h.CreateStemHandler, roleWriters...), "Stems", "Create a stem", true, "CreateStem", false, http.StatusCreated, "Stem"},
		{http.MethodGet, "/stems", h.GetStemsHandler, "Stems", "List all stems", false, "", false, http.StatusOK, "StemList"},
		{http.MethodGet, "/stems/{id}", h.GetStemHandler, "Stems", "Get a stem", false, "", false, http.StatusOK, "Stem"},
		{http.MethodPut, "/stems/{id}/audio", h.AuthMiddleware(h.UploadStemAudioHandler), "Stems", "Upload the audio of a stem", true, "", true, http.StatusCreated, "Stem"},
		{http.MethodPut, "/stems/{id}", h.RequireRole(h.UpdateStemHandler, roleWriters...), "Stems", "Update a stem", true, "UpdateStem", false, http.StatusOK, "Stem"},
		{http.MethodDelete, "/stems/{id}", h.RequireRole(h.DeleteStemHandler, roleWriters...), "Stems", "Delete a stem and its audio files", true, "", false, http.StatusOK, ""},

		// 评论
		{http.MethodPost, "/comments", h.AuthMiddleware(h.CreateCommentHandler), "Comments", "Create a comment", true, "CreateComment", false, http.StatusCreated, "Comment"},
		{http.MethodGet, "/comments", h.GetCommentsHandler, "Comments", "List all comments", false, "", false, http.StatusOK, "CommentList"},
		{http.MethodGet, "/comments/{id}", h.GetCommentHandler, "Comments", "Get a comment", false, "", false, http.StatusOK, "Comment"},
		{http.MethodDelete, "/comments/{id}", h.AuthMiddleware(h.DeleteCommentHandler), "Comments", "Delete a comment", true, "", false, http.StatusOK, ""},
	}
}

type docObject = map[string]interface{}

func ref(name string) docObject {
	return docObject{"$ref": "#/components/schemas/" + name}
}

func genreEnum() []string {
	names := make([]string, 0, len(model.Genres))
	for _, g := range model.Genres {
		names = append(names, string(g))
	}
	return names
}

func docSchemas() docObject {
	str := docObject{"type": "string"}
	stamp := docObject{"type": "string", "format": "date-time"}
	genres := docObject{"type": "array", "items": docObject{"type": "string", "enum": genreEnum()}}
	audio := docObject{"type": "string", "description": "\"" + model.EmptyAudio + "\" until a file is uploaded"}

	return docObject{
		"Track": docObject{
			"type": "object",
			"properties": docObject{
				"id": str, "user": str, "audio": audio, "name": str, "genre": genres,
				"createdAt": stamp, "updatedAt": stamp,
			},
		},
		"Stem": docObject{
			"type": "object",
			"properties": docObject{
				"id": str, "user": str, "audio": audio, "name": str, "trackId": str,
				"createdAt": stamp, "updatedAt": stamp,
			},
		},
		"Comment": docObject{
			"type": "object",
			"properties": docObject{
				"id": str, "user": str, "comment": str, "createdAt": stamp,
			},
		},
		"TrackList":   docObject{"type": "array", "items": ref("Track")},
		"StemList":    docObject{"type": "array", "items": ref("Stem")},
		"CommentList": docObject{"type": "array", "items": ref("Comment")},
		"CreateTrack": docObject{
			"type":                 "object",
			"required":             []string{"user", "name"},
			"additionalProperties": false,
			"properties":           docObject{"user": str, "name": str, "genre": genres},
		},
		"UpdateTrack": docObject{
			"type":                 "object",
			"required":             []string{"name"},
			"additionalProperties": false,
			"properties":           docObject{"user": str, "name": str, "genre": genres},
		},
		"CreateStem": docObject{
			"type":                 "object",
			"required":             []string{"user", "name", "trackId"},
			"additionalProperties": false,
			"properties":           docObject{"user": str, "name": str, "trackId": str},
		},
		"UpdateStem": docObject{
			"type":                 "object",
			"required":             []string{"name"},
			"additionalProperties": false,
			"properties":           docObject{"user": str, "name": str, "trackId": str},
		},
		"CreateComment": docObject{
			"type":                 "object",
			"required":             []string{"user", "comment"},
			"additionalProperties": false,
			"properties":           docObject{"user": str, "comment": str},
		},
		"Error": docObject{
			"type": "object",
			"properties": docObject{
				"status":  docObject{"type": "string", "enum": []string{statusError}},
				"message": str,
				"data":    docObject{"type": "object", "additionalProperties": str},
			},
		},
	}
}

func envelopeSchema(data string) docObject {
	props := docObject{
		"status":  docObject{"type": "string", "enum": []string{statusSuccess}},
		"message": docObject{"type": "string"},
	}
	if data != "" {
		props["data"] = ref(data)
	}
	return docObject{"type": "object", "properties": props}
}

func jsonContent(schema docObject) docObject {
	return docObject{"application/json": docObject{"schema": schema}}
}

func (r route) operation() docObject {
	errResp := func(desc string) docObject {
		return docObject{"description": desc, "content": jsonContent(ref("Error"))}
	}

	responses := docObject{
		statusKey(r.status): docObject{
			"description": http.StatusText(r.status),
			"content":     jsonContent(envelopeSchema(r.result)),
		},
		"500": errResp("Internal server error"),
	}
	op := docObject{
		"tags":      []string{r.tag},
		"summary":   r.summary,
		"responses": responses,
	}

	if strings.Contains(r.path, "{id}") {
		op["parameters"] = []docObject{{
			"name": "id", "in": "path", "required": true,
			"schema": docObject{"type": "string"},
		}}
		responses["404"] = errResp("Not found")
	}
	if r.body != "" {
		op["requestBody"] = docObject{"required": true, "content": jsonContent(ref(r.body))}
		responses["400"] = errResp("Validation failed")
	}
	if r.upload {
		op["requestBody"] = docObject{
			"required": true,
			"content": docObject{"multipart/form-data": docObject{"schema": docObject{
				"type":     "object",
				"required": []string{audioField},
				"properties": docObject{audioField: docObject{
					"type": "string", "format": "binary",
					"description": "audio/mpeg or audio/wav",
				}},
			}}},
		}
		responses["400"] = errResp("Invalid file type")
		responses["413"] = errResp("File too large")
	}
	if r.secured {
		op["security"] = []docObject{{"bearerAuth": []string{}}}
		responses["401"] = errResp("Missing or invalid token")
		responses["403"] = errResp("Not allowed")
	}
	return op
}

func statusKey(status int) string {
	return strconv.Itoa(status)
}

// buildOpenAPI describes routes as an OpenAPI 3.1 document served at serverURL.
func buildOpenAPI(serverURL string, routes []route) docObject {
	paths := docObject{}
	for _, r := range routes {
		item, ok := paths[r.path].(docObject)
		if !ok {
			item = docObject{}
			paths[r.path] = item
		}
		item[strings.ToLower(r.method)] = r.operation()
	}

	return docObject{
		"openapi": "3.1.0",
		"info": docObject{
			"title":       "stemhub API",
			"version":     "1.0.0",
			"description": "Tracks, stems and comments with audio uploads.",
		},
		"servers": []docObject{{"url": serverURL, "description": "API v1"}},
		"components": docObject{
			"securitySchemes": docObject{
				"bearerAuth": docObject{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
			"schemas": docSchemas(),
		},
		"paths": paths,
	}
}

func marshalOpenAPI(serverURL string, routes []route) []byte {
	doc, err := json.Marshal(buildOpenAPI(serverURL, routes))
	if err != nil {
		logger.Error("[HTTP] 生成接口文档失败", logger.ErrorField(err))
		return []byte("{}")
	}
	return doc
}

// OpenAPIHandler GET /api-docs/openapi.json
func (h *APIHandler) OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.apiDoc); err != nil {
		logger.Warn("[HTTP] 写入接口文档失败", logger.ErrorField(err))
	}
}
