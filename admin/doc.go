// Package admin provides the JSON moderation API for the comment wall.
//
// The API runs on its own port, separate from the HTTP/1.1 origin server:
//
//	GET    /healthz              {"status":"ok"}
//	GET    /comments?limit=&cursor=
//	POST   /comments             {"name":"...","comment":"..."}
//	DELETE /comments/{id}
//
// Errors are JSON objects with "error" and "message" fields.
//
// # Authentication
//
// Comment routes can be protected with HTTP basic auth. Pass a Verifier
// (see package keybackend) in HandlerConfig; nil leaves the API open:
//
//	store, err := keybackend.NewSecretStore(cfg.Admin.Keys)
//	handler := admin.NewHandler(&admin.HandlerConfig{Verifier: store}, service)
//	http.ListenAndServe(":8081", handler.Router())
package admin
