package backend

// Mapping templates are raw JSON, keyed by document kind — the same
// convention the rest of the example corpus uses for search-engine index
// definitions (no official client library ships typed mapping structs, so
// the settings/mappings bodies are embedded as string constants; CreateIndex
// parses them and combines them into one create-index request body).

const settingsTemplate = `{
  "settings": {
    "number_of_shards": %d,
    "number_of_replicas": %d,
    "analysis": {
      "filter": {
        "ngram_filter": { "type": "ngram", "min_gram": 1, "max_gram": 20 }
      },
      "analyzer": {
        "ngram_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding", "ngram_filter"]
        },
        "search_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  }
}`

const adminMapping = `{
  "properties": {
    "id": {"type": "keyword"},
    "label": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "name": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "coord": {"type": "geo_point"},
    "boundary": {"type": "geo_shape"},
    "zip_codes": {"type": "keyword"},
    "weight": {"type": "double"},
    "zone_type": {"type": "keyword"},
    "level": {"type": "integer"},
    "type": {"type": "keyword"}
  }
}`

const streetMapping = `{
  "properties": {
    "id": {"type": "keyword"},
    "label": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "street_name": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "coord": {"type": "geo_point"},
    "weight": {"type": "double"},
    "administrative_regions": {
      "type": "nested",
      "properties": {
        "id": {"type": "keyword"},
        "level": {"type": "integer"},
        "name": {"type": "keyword"},
        "zone_type": {"type": "keyword"}
      }
    },
    "type": {"type": "keyword"}
  }
}`

const addrMapping = `{
  "properties": {
    "id": {"type": "keyword"},
    "label": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "house_number": {"type": "keyword"},
    "coord": {"type": "geo_point"},
    "zip_codes": {"type": "keyword"},
    "weight": {"type": "double"},
    "street": {
      "type": "object",
      "properties": {
        "id": {"type": "keyword"},
        "street_name": {"type": "text"}
      }
    },
    "administrative_regions": {
      "type": "nested",
      "properties": {
        "id": {"type": "keyword"},
        "level": {"type": "integer"},
        "name": {"type": "keyword"},
        "zone_type": {"type": "keyword"}
      }
    },
    "type": {"type": "keyword"}
  }
}`

const poiMapping = `{
  "properties": {
    "id": {"type": "keyword"},
    "label": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "name": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "coord": {"type": "geo_point"},
    "weight": {"type": "double"},
    "poi_type": {
      "type": "object",
      "properties": {
        "id": {"type": "keyword"},
        "name": {"type": "keyword"}
      }
    },
    "administrative_regions": {
      "type": "nested",
      "properties": {
        "id": {"type": "keyword"},
        "level": {"type": "integer"},
        "name": {"type": "keyword"},
        "zone_type": {"type": "keyword"}
      }
    },
    "type": {"type": "keyword"}
  }
}`

const stopMapping = `{
  "properties": {
    "id": {"type": "keyword"},
    "label": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "name": {"type": "text", "analyzer": "ngram_analyzer", "search_analyzer": "search_analyzer"},
    "coord": {"type": "geo_point"},
    "weight": {"type": "double"},
    "commercial_modes": {"type": "keyword"},
    "physical_modes": {"type": "keyword"},
    "lines": {"type": "keyword"},
    "type": {"type": "keyword"}
  }
}`

// mappingFor returns the mapping body registered for a document kind, or
// "" if kind names a kind with no dedicated mapping.
func mappingFor(kind string) string {
	switch kind {
	case "admin":
		return adminMapping
	case "street":
		return streetMapping
	case "addr":
		return addrMapping
	case "poi":
		return poiMapping
	case "stop":
		return stopMapping
	default:
		return ""
	}
}
