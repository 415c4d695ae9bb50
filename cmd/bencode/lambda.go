package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/epithet-ssh/bencode/pkg/codecserver"
	"github.com/epithet-ssh/bencode/pkg/config"
)

type LambdaCLI struct {
	ConfigParameter string `help:"SSM Parameter Store parameter holding a YAML settings file" env:"BENCODE_CONFIG_PARAMETER"`
	MaxBodyBytes    int64  `default:"6291456" help:"Maximum request body size in bytes"`
}

func (l *LambdaCLI) Run(ctx context.Context, logger *slog.Logger, codec config.Codec) error {
	if l.ConfigParameter != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		settings, err := loadSettingsParameter(ctx, ssm.NewFromConfig(awsCfg), l.ConfigParameter)
		if err != nil {
			return err
		}
		codec = settings.Codec
		logger.Info("loaded settings from SSM Parameter Store", "parameter", l.ConfigParameter)
	}

	handler := codecserver.New(codecserver.Config{
		Codec:        codec,
		Logger:       logger,
		MaxBodyBytes: l.MaxBodyBytes,
	})

	logger.Info("codec Lambda initialized", "max_depth", codec.MaxDepth, "key_order", codec.KeyOrder)
	lambda.StartWithOptions(func(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handleLambdaRequest(ctx, request, handler, logger)
	}, lambda.WithContext(ctx))
	return nil
}

type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func loadSettingsParameter(ctx context.Context, client ssmAPI, name string) (*config.Settings, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve SSM parameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("SSM parameter %s has no value", name)
	}

	settings, err := config.LoadFromReader[config.Settings](strings.NewReader(*out.Parameter.Value))
	if err != nil {
		return nil, fmt.Errorf("SSM parameter %s: %w", name, err)
	}
	if err := settings.Codec.Validate(); err != nil {
		return nil, fmt.Errorf("SSM parameter %s: %w", name, err)
	}
	return settings, nil
}

func handleLambdaRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest, handler http.Handler, logger *slog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	target := request.RawPath
	if request.RawQueryString != "" {
		target += "?" + request.RawQueryString
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusBadRequest,
				Body:       "request body is not valid base64",
			}, nil
		}
		body = decoded
	}

	req, err := http.NewRequestWithContext(ctx, request.RequestContext.HTTP.Method, target, bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to create request", "error", err)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       "Internal server error",
		}, nil
	}
	for k, v := range request.Headers {
		req.Header.Set(k, v)
	}
	req.RemoteAddr = request.RequestContext.HTTP.SourceIP

	rw := &lambdaResponseWriter{headers: make(http.Header)}
	handler.ServeHTTP(rw, req)

	headers := make(map[string]string, len(rw.headers))
	for k, v := range rw.headers {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	resp := events.APIGatewayV2HTTPResponse{
		StatusCode: rw.status(),
		Headers:    headers,
	}
	// API Gateway bodies are strings; binary output travels as base64
	if utf8.Valid(rw.body.Bytes()) {
		resp.Body = rw.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(rw.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp, nil
}

// lambdaResponseWriter buffers a response for API Gateway.
type lambdaResponseWriter struct {
	headers    http.Header
	body       bytes.Buffer
	statusCode int
}

func (w *lambdaResponseWriter) Header() http.Header {
	return w.headers
}

func (w *lambdaResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *lambdaResponseWriter) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
}

func (w *lambdaResponseWriter) status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}
