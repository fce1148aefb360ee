package main

// General API documentation for swaggo. The served document lives in
// internal/httpapi and is mounted with -tags=swagger.
//
// @title           glbview API
// @version         1.0
// @description     Browse, upload and preview .glb models in the browser.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
