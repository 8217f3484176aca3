package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urban-housing-tools/commuterank/geo"
)

// tableOrder lists the GTFS files the index consumes, in dependency
// order: stops first so stop_times can be filtered against them.
var tableOrder = []string{"stops.txt", "routes.txt", "trips.txt", "stop_times.txt"}

// Load reads a GTFS feed from a directory or a .zip archive and builds an
// index over it. Stops outside bounds are dropped; pass geo.BoundingBox{}
// to keep everything. stops.txt is mandatory, the other tables optional.
func Load(path string, bounds geo.BoundingBox) (*Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open GTFS feed %q: %w", path, err)
	}

	ix := newIndex(bounds)
	if info.IsDir() {
		err = loadFromDir(ix, path)
	} else {
		err = loadFromZip(ix, path)
	}
	if err != nil {
		return nil, err
	}
	if len(ix.stops) == 0 {
		return nil, fmt.Errorf("GTFS feed %q contains no usable stops", path)
	}
	return ix, nil
}

func loadFromDir(ix *Index, dir string) error {
	for _, name := range tableOrder {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("open %s: %w", name, err)
		}
		err = ix.consumeCSV(name, f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func loadFromZip(ix *Index, path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open GTFS zip %q: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	// Zip entry order is arbitrary; index the members, then consume in
	// table order. Feeds sometimes nest the files under one directory.
	members := map[string]*zip.File{}
	for _, f := range zr.File {
		base := strings.ToLower(filepath.Base(f.Name))
		if _, ok := members[base]; !ok {
			members[base] = f
		}
	}
	for _, name := range tableOrder {
		f, ok := members[name]
		if !ok {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s in zip: %w", name, err)
		}
		err = ix.consumeCSV(name, r)
		_ = r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) consumeCSV(name string, r io.Reader) error {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(rec) < 2 {
		return nil
	}
	head := rec[0]
	// The first header cell of a UTF-8 feed may carry a BOM.
	head[0] = strings.TrimPrefix(head[0], "\ufeff")
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	switch name {
	case "stops.txt":
		sID := idx("stop_id")
		sName := idx("stop_name")
		sLat := idx("stop_lat")
		sLon := idx("stop_lon")
		if sID < 0 || sLat < 0 || sLon < 0 {
			return fmt.Errorf("stops.txt is missing stop_id/stop_lat/stop_lon columns")
		}
		for _, row := range rec[1:] {
			lat, latErr := strconv.ParseFloat(field(row, sLat), 64)
			lon, lonErr := strconv.ParseFloat(field(row, sLon), 64)
			if latErr != nil || lonErr != nil {
				continue
			}
			ix.addStop(StopInfo{
				ID:         field(row, sID),
				Name:       field(row, sName),
				Coordinate: geo.Coordinate{Latitude: lat, Longitude: lon},
			})
		}

	case "routes.txt":
		rID := idx("route_id")
		rShort := idx("route_short_name")
		rLong := idx("route_long_name")
		rType := idx("route_type")
		if rID < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			id := field(row, rID)
			name := field(row, rShort)
			if name == "" {
				name = field(row, rLong)
			}
			ix.routeNames[id] = name
			if t, err := strconv.Atoi(field(row, rType)); err == nil {
				ix.routeModes[id] = routeModeFromType(t)
			} else {
				ix.routeModes[id] = "transit"
			}
		}

	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		if rID < 0 || tID < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			ix.tripRoute[field(row, tID)] = field(row, rID)
		}

	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		seq := idx("stop_sequence")
		arr := idx("arrival_time")
		dep := idx("departure_time")
		if tID < 0 || sID < 0 || seq < 0 {
			return nil
		}
		byTrip := map[string][]stopTime{}
		tripOrder := []string{}
		for _, row := range rec[1:] {
			trip := field(row, tID)
			seqNo, err := strconv.Atoi(field(row, seq))
			if err != nil {
				continue
			}
			arrSec, arrOK := parseGTFSTime(field(row, arr))
			depSec, depOK := parseGTFSTime(field(row, dep))
			if !arrOK && depOK {
				arrSec = depSec
			}
			if !depOK && arrOK {
				depSec = arrSec
			}
			if !arrOK && !depOK {
				continue
			}
			if _, seen := byTrip[trip]; !seen {
				tripOrder = append(tripOrder, trip)
			}
			byTrip[trip] = append(byTrip[trip], stopTime{
				StopID:       field(row, sID),
				Seq:          seqNo,
				ArrivalSec:   arrSec,
				DepartureSec: depSec,
			})
		}
		for _, trip := range tripOrder {
			rows := byTrip[trip]
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].Seq < rows[j].Seq })
			ix.addStopTimes(trip, rows)
		}
	}
	return nil
}

// parseGTFSTime parses a GTFS HH:MM:SS clock value into seconds since
// service midnight. Hours past 24 mark trips running over midnight and
// are kept as-is.
func parseGTFSTime(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, errM := strconv.Atoi(parts[1])
	sec, errS := strconv.Atoi(parts[2])
	if errH != nil || errM != nil || errS != nil || h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}
