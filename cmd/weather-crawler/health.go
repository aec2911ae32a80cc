package main

import "context"

// PingOutput is the body of the liveness probe
type PingOutput struct {
	Body struct {
		Message string `json:"message" example:"pong" doc:"Always pong while the process serves requests"`
	}
}

func (app *App) handlePing(_ context.Context, _ *struct{}) (*PingOutput, error) {
	out := &PingOutput{}
	out.Body.Message = "pong"
	return out, nil
}
