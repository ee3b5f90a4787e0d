// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at"`
}

type OauthIdentity struct {
	ID        int64     `json:"id"`
	Provider  string    `json:"provider"`
	Subject   string    `json:"subject"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	Tag       string    `json:"tag"`
	Category  string    `json:"category"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Inquiry struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	Title      string        `json:"title"`
	Question   string        `json:"question"`
	Answer     string        `json:"answer"`
	AdminID    sql.NullInt64 `json:"admin_id"`
	AnsweredAt sql.NullTime  `json:"answered_at"`
	CreatedAt  time.Time     `json:"created_at"`
}

type CustomerInquiry struct {
	ID           int64     `json:"id"`
	InquiryType  string    `json:"inquiry_type"`
	CustomerName string    `json:"customer_name"`
	Contact      string    `json:"contact"`
	Equipment    string    `json:"equipment"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Schedule struct {
	ID           int64     `json:"id"`
	ScheduleDate string    `json:"schedule_date"`
	Region       string    `json:"region"`
	DriverName   string    `json:"driver_name"`
	Memo         string    `json:"memo"`
	CreatedAt    time.Time `json:"created_at"`
}

type NaverAdsStat struct {
	ID          int64     `json:"id"`
	StatDate    string    `json:"stat_date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Cost        int64     `json:"cost"`
	Conversions int64     `json:"conversions"`
	Ctr         float64   `json:"ctr"`
	Cpc         float64   `json:"cpc"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}
