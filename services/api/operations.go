package api

import (
	"context"
	"net/http"

	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/chat"
	"github.com/kymoh/darasa/core/engine"
)

var _ engine.Gateway = (*Client)(nil)

func (c *Client) Login(ctx context.Context, creds engine.Credentials) (engine.LoginResult, error) {
	var res engine.LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &res); err != nil {
		return engine.LoginResult{}, err
	}
	return res, nil
}

func (c *Client) FetchAll(ctx context.Context) (*engine.Dataset, error) {
	ds := new(engine.Dataset)
	if err := c.do(ctx, http.MethodGet, "/all-data", nil, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (c *Client) SaveEntity(ctx context.Context, kind catalog.Kind, id string, body, out interface{}) error {
	if id == "" {
		return c.do(ctx, http.MethodPost, "/"+kind.Path(), body, out)
	}
	return c.do(ctx, http.MethodPut, "/"+kind.Path()+"/"+id, body, out)
}

func (c *Client) DeleteEntity(ctx context.Context, kind catalog.Kind, id string) error {
	return c.delete(ctx, "/"+kind.Path()+"/"+id)
}

func (c *Client) ReplaceConstraints(ctx context.Context, cons catalog.Constraints) (catalog.Constraints, error) {
	var saved catalog.Constraints
	if err := c.do(ctx, http.MethodPut, "/constraints", cons, &saved); err != nil {
		return catalog.Constraints{}, err
	}
	return saved, nil
}

func (c *Client) SaveTimetable(ctx context.Context, entries []catalog.TimetableEntry) error {
	return c.do(ctx, http.MethodPost, "/timetable", entries, nil)
}

type classAttendanceRequest struct {
	ClassID string            `json:"classId"`
	Date    string            `json:"date"`
	Records attendance.Record `json:"records"`
}

func (c *Client) SaveClassAttendance(ctx context.Context, classID, date string, rec attendance.Record) error {
	req := classAttendanceRequest{ClassID: classID, Date: date, Records: rec}
	return c.do(ctx, http.MethodPut, "/attendance/class", req, nil)
}

type attendanceRequest struct {
	ClassID   string            `json:"classId"`
	Date      string            `json:"date"`
	StudentID string            `json:"studentId"`
	Status    attendance.Status `json:"status"`
}

func (c *Client) SaveAttendance(ctx context.Context, classID, date, studentID string, st attendance.Status) error {
	req := attendanceRequest{ClassID: classID, Date: date, StudentID: studentID, Status: st}
	return c.do(ctx, http.MethodPut, "/attendance", req, nil)
}

type chatAskRequest struct {
	MessageText string `json:"messageText"`
	ClassID     string `json:"classId"`
}

func (c *Client) AskChat(ctx context.Context, text, classID string) (chat.Message, error) {
	var msg chat.Message
	if err := c.do(ctx, http.MethodPost, "/chat/ask", chatAskRequest{MessageText: text, ClassID: classID}, &msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

func (c *Client) ResetData(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/reset-data", nil, nil)
}
