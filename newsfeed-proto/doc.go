// Package newsfeedproto contains the wire protocol for the newsfeed service.
package newsfeedproto

//go:generate protoc --proto_path=. --go_out=plugins=grpc:. --go_opt=paths=source_relative newsfeed.proto
