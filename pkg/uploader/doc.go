// Package uploader posts diagnostic chunks to a cloud ingestion
// endpoint over HTTP.
//
// The Uploader's Upload method matches session.UploadFunc, so it plugs
// straight into Session.SetUploadCallback:
//
//	up := uploader.New()
//	sess.SetUploadCallback(up.Upload)
//
// Each chunk becomes one POST with Content-Type
// application/octet-stream. The authorization string from the device
// configuration is split on its first ':' into a header name and
// value, per the "HeaderName:HeaderValue" convention; the uploader
// never interprets it beyond that.
package uploader
