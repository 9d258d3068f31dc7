package sanity

// villaProjection dereferences location, amenities and seasons so one query
// returns everything the mapper needs.
const villaProjection = `{
  _id,
  "slug": slug.current,
  listingType,
  language,
  name,
  description,
  fullDescription,
  priceNote,
  bedrooms,
  bathrooms,
  guests,
  surface,
  pricePerNight,
  pricePerWeek,
  salePrice,
  seasonalPrices[]{
    "season": season->{_id, name},
    dates,
    prices[]{bedrooms, price}
  },
  "amenities": amenities[]->{_id, name, icon},
  "location": location->{_id, name, order},
  geopoint,
  homeFeatures[]{title, description},
  tags,
  featuredOnHomepage,
  homepageOrder,
  "mainImage": mainImage.asset._ref,
  mainImageUrl,
  "gallery": gallery[]{"ref": asset._ref, url},
  highlightedAmenities,
  includePriceInBrochure
}`

const (
	allVillasQuery   = `*[_type == "villa" && !(_id in path("drafts.**"))] | order(name.fr asc, name asc) ` + villaProjection
	villaByIDQuery   = `*[_type == "villa" && _id == $id][0] ` + villaProjection
	villaBySlugQuery = `*[_type == "villa" && slug.current == $slug][0] ` + villaProjection

	translationQuery = `*[_type == "translationCache" && contentHash == $hash && targetLang == $lang] | order(_updatedAt desc)[0]{
  contentHash, targetLang, originalText, translatedText, sourceLang, createdAt
}`
)
