package main

// Source blank imports: each import activates a self-registering adapter.

import (
	_ "github.com/Strob0t/ganttboard/internal/adapter/csvhttp"
	_ "github.com/Strob0t/ganttboard/internal/adapter/gsheets"
	_ "github.com/Strob0t/ganttboard/internal/adapter/xlsx"
)
