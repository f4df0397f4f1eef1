// Package web holds the account and home pages of the login application.
package web
